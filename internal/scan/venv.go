package scan

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pysweep/internal/logging"
	"pysweep/internal/model"
)

// venvMarkers identify a directory as a virtual environment. One present
// marker is enough.
var venvMarkers = []string{
	"pyvenv.cfg",
	filepath.Join("bin", "activate"),
	filepath.Join("Scripts", "activate.bat"),
}

// pythonCandidates are the relative locations of a venv's own interpreter,
// in lookup order.
var pythonCandidates = []string{
	filepath.Join("bin", "python"),
	filepath.Join("bin", "python3"),
	filepath.Join("Scripts", "python.exe"),
}

// IsVenvDir reports whether path looks like a virtual environment root.
func IsVenvDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	for _, m := range venvMarkers {
		if _, err := os.Stat(filepath.Join(path, m)); err == nil {
			return true
		}
	}
	return false
}

// ProbeVenv builds a VirtualEnv for the given directory, or returns nil when
// it carries no venv marker. Venv-ness is checked once, at construction; the
// package list stays empty until ProbePackages is called.
func (p *Prober) ProbeVenv(dirPath string) *model.VirtualEnv {
	abs, err := filepath.Abs(dirPath)
	if err != nil {
		abs = dirPath
	}
	if !IsVenvDir(abs) {
		return nil
	}

	v := &model.VirtualEnv{
		Path:        abs,
		Name:        filepath.Base(abs),
		ProjectName: model.ProjectNameFor(abs),
		Manager:     classifyVenv(abs),
	}

	for _, cand := range pythonCandidates {
		py := filepath.Join(abs, cand)
		if isExecutableFile(py) {
			v.PythonExec = py
			break
		}
	}

	if v.PythonExec != "" {
		if banner, err := runPython(v.PythonExec, versionProgram, versionProbeTimeout); err == nil {
			v.PythonVersion = firstLine(banner)
		}
	}

	v.SizeBytes, _ = DirSize(abs)
	v.LastModified = modTime(abs)
	return v
}

// classifyVenv applies ordered venv-specific path-substring rules.
func classifyVenv(path string) model.Manager {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, ".pyenv"):
		return model.ManagerPyenv
	case strings.Contains(lower, "pipx"):
		return model.ManagerPipx
	case strings.Contains(lower, "poetry"):
		return model.ManagerPoetry
	case strings.Contains(lower, "conda") || strings.Contains(lower, "miniconda") || strings.Contains(lower, "anaconda"):
		return model.ManagerConda
	case strings.Contains(lower, "virtualenvs") || strings.Contains(lower, "pipenv"):
		return model.ManagerPipenv
	case strings.Contains(lower, "hatch"):
		return model.ManagerHatch
	case strings.Contains(lower, "pdm"):
		return model.ManagerPdm
	default:
		return model.ManagerVenv
	}
}

// pipListEntry is the wire shape of one `pip list --format=json` record.
type pipListEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ProbePackages queries the venv's own interpreter for its installed
// packages and overwrites the cached list on success. A venv without a
// resolvable interpreter is a no-op; any probe failure leaves the list at
// its prior value. Repeated calls always re-query.
func (p *Prober) ProbePackages(v *model.VirtualEnv) {
	if v.PythonExec == "" {
		return
	}

	out, err := runCommand(packageListTimeout, v.PythonExec, "-m", "pip", "list", "--format=json")
	if err != nil {
		logging.Logger().Debug("package probe failed",
			slog.String("venv", v.Path), slog.String("error", err.Error()))
		return
	}

	var entries []pipListEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		logging.Logger().Debug("package probe returned malformed output",
			slog.String("venv", v.Path), slog.String("error", err.Error()))
		return
	}

	pkgs := make([]model.Package, 0, len(entries))
	dropped := 0
	for _, e := range entries {
		if e.Name == "" || e.Version == "" {
			dropped++
			continue
		}
		pkgs = append(pkgs, model.Package{Name: e.Name, Version: e.Version})
	}

	v.Packages = pkgs
	v.PackagesLoaded = true
	v.DroppedPackages = dropped
}

// UninstallPackage removes one named package from the venv via its own pip.
// In dry-run mode nothing is executed.
func (p *Prober) UninstallPackage(v *model.VirtualEnv, name string, dryRun bool) error {
	if v.PythonExec == "" {
		return fmt.Errorf("no runnable interpreter in %s", v.Path)
	}
	if dryRun {
		return nil
	}
	_, err := runCommand(uninstallTimeout, v.PythonExec, "-m", "pip", "uninstall", "-y", name)
	if err != nil {
		return fmt.Errorf("uninstall %s from %s: %w", name, v.Path, err)
	}
	return nil
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
