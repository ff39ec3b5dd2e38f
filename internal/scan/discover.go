package scan

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pysweep/internal/logging"
	"pysweep/internal/model"
)

// DefaultManagerPaths maps a manager name to the root directories it creates
// environments under. Entries may start with ~.
var DefaultManagerPaths = map[string][]string{
	"pyenv":  {"~/.pyenv/versions"},
	"asdf":   {"~/.asdf/installs/python"},
	"pipx":   {"~/.local/pipx/venvs"},
	"poetry": {"~/.cache/pypoetry/virtualenvs", "~/.local/share/pypoetry/virtualenvs"},
	"conda": {"~/miniconda3/envs", "~/anaconda3/envs", "~/miniforge3/envs",
		"/opt/miniconda3/envs", "/opt/anaconda3/envs"},
	"pipenv": {"~/.local/share/virtualenvs"},
	"hatch":  {"~/.local/share/hatch/env/virtual"},
	"pdm":    {"~/.local/share/pdm/venvs"},
}

// pythonNames are the executable filenames probed inside bin directories and
// PATH entries.
var pythonNames = []string{"python", "python3", "python2"}

// Config is the immutable configuration injected into an Engine. The tables
// are injectable so tests can point discovery at synthetic roots.
type Config struct {
	ManagerPaths     map[string][]string
	ProjectVenvNames []string

	// HomeDir is the root of the one-level venv scan. Defaults to the
	// user's home directory.
	HomeDir string

	// PathEnv is the executable search path scanned for interpreters.
	// Defaults to $PATH.
	PathEnv string

	// ScanPath enables the optional bounded recursive venv scan when
	// non-empty; MaxDepth limits its recursion.
	ScanPath string
	MaxDepth int

	// UseMdfind consults the macOS content index for candidates. Hits are
	// verified locally before being accepted.
	UseMdfind bool

	// Parallel bounds the package-probing worker pool.
	Parallel int
}

// DefaultConfig returns the stock discovery configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		ManagerPaths:     DefaultManagerPaths,
		ProjectVenvNames: model.ProjectVenvNames,
		HomeDir:          home,
		PathEnv:          os.Getenv("PATH"),
		MaxDepth:         3,
		Parallel:         4,
	}
}

// Engine discovers interpreters and venvs by composing manager path tables,
// a PATH scan, a bounded home-directory scan and an optional content-index
// lookup. Results are deduplicated by canonical path across all strategies.
type Engine struct {
	cfg    Config
	prober *Prober
}

func NewEngine(cfg Config, prober *Prober) *Engine {
	if prober == nil {
		prober = NewProber(nil)
	}
	if cfg.ProjectVenvNames == nil {
		cfg.ProjectVenvNames = model.ProjectVenvNames
	}
	return &Engine{cfg: cfg, prober: prober}
}

// dedupSet tracks canonical paths already emitted within one discovery pass.
type dedupSet map[string]struct{}

// add canonicalizes path (symlink-resolved, absolute) and reports whether it
// was newly inserted. The canonical path is returned for entity identity.
func (s dedupSet) add(path string) (string, bool) {
	canon := canonicalPath(path)
	if _, ok := s[canon]; ok {
		return canon, false
	}
	s[canon] = struct{}{}
	return canon, true
}

func canonicalPath(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = resolved
	}
	return abs
}

// FindInterpreters locates Python interpreter installs. Strategy order:
// manager path tables, then every PATH directory, then the optional content
// index. Per-directory permission errors contribute nothing and never abort
// the pass.
func (e *Engine) FindInterpreters() []model.Interpreter {
	var found []model.Interpreter
	seen := dedupSet{}

	emit := func(execPath string) {
		canon, fresh := seen.add(execPath)
		if !fresh {
			return
		}
		found = append(found, e.prober.ProbeInterpreter(canon))
	}

	for _, roots := range e.cfg.ManagerPaths {
		for _, root := range roots {
			root = model.ExpandTilde(root)
			for _, versionDir := range listSubdirs(root) {
				binDir := filepath.Join(versionDir, "bin")
				for _, name := range pythonNames {
					py := filepath.Join(binDir, name)
					if isExecutableFile(py) {
						emit(py)
					}
				}
			}
		}
	}

	for _, dir := range filepath.SplitList(e.cfg.PathEnv) {
		if dir == "" {
			continue
		}
		for _, name := range pythonNames {
			py := filepath.Join(dir, name)
			if isExecutableFile(py) {
				emit(py)
			}
		}
	}

	if e.useContentIndex() {
		for _, hit := range mdfindByName("python3") {
			if isExecutableFile(hit) {
				emit(hit)
			}
		}
	}

	return found
}

// FindVenvs locates virtual environments. Strategy order: manager path
// tables, a one-level home-directory scan (each immediate subdirectory is
// tested both as a venv and as a container of a conventionally named venv),
// the optional bounded recursive scan, then the optional content index.
func (e *Engine) FindVenvs() []model.VirtualEnv {
	var found []model.VirtualEnv
	seen := dedupSet{}

	emit := func(dir string) {
		canon, fresh := seen.add(dir)
		if !fresh {
			return
		}
		if v := e.prober.ProbeVenv(canon); v != nil {
			found = append(found, *v)
		}
	}

	for _, roots := range e.cfg.ManagerPaths {
		for _, root := range roots {
			root = model.ExpandTilde(root)
			for _, sub := range listSubdirs(root) {
				if IsVenvDir(sub) {
					emit(sub)
				}
			}
		}
	}

	if e.cfg.HomeDir != "" {
		for _, sub := range listSubdirs(e.cfg.HomeDir) {
			if IsVenvDir(sub) {
				emit(sub)
				continue
			}
			for _, name := range e.cfg.ProjectVenvNames {
				cand := filepath.Join(sub, name)
				if IsVenvDir(cand) {
					emit(cand)
				}
			}
		}
	}

	if e.cfg.ScanPath != "" && e.cfg.MaxDepth > 0 {
		e.scanTree(model.ExpandTilde(e.cfg.ScanPath), 0, emit)
	}

	if e.useContentIndex() {
		for _, hit := range mdfindByName("pyvenv.cfg") {
			// Index hits are candidates only; the venv check re-verifies
			// on disk because the index can be stale.
			emit(filepath.Dir(hit))
		}
	}

	return found
}

// skipDirNames are trees the recursive scan never descends into.
var skipDirNames = map[string]struct{}{
	"node_modules": {}, "Library": {}, "Applications": {},
	".git": {}, "__pycache__": {},
}

// scanTree is the optional configurable-depth project scan. It honors the
// same dedup contract as the fixed strategies.
func (e *Engine) scanTree(root string, depth int, emit func(string)) {
	if depth > e.cfg.MaxDepth {
		return
	}
	for _, sub := range listSubdirs(root) {
		base := filepath.Base(sub)
		if _, skip := skipDirNames[base]; skip {
			continue
		}
		if strings.HasPrefix(base, ".") && !containsString(e.cfg.ProjectVenvNames, base) {
			continue
		}
		if IsVenvDir(sub) {
			emit(sub)
			continue
		}
		e.scanTree(sub, depth+1, emit)
	}
}

// Scan runs both discovery passes and, unless told otherwise, probes every
// venv's packages through a bounded worker pool.
func (e *Engine) Scan(probePackages bool) *model.DiscoveryResult {
	result := &model.DiscoveryResult{
		ScanTime:     time.Now(),
		Interpreters: e.FindInterpreters(),
		Venvs:        e.FindVenvs(),
	}
	if probePackages {
		targets := make([]*model.VirtualEnv, len(result.Venvs))
		for i := range result.Venvs {
			targets[i] = &result.Venvs[i]
		}
		e.ProbeAllPackages(targets)
	}
	return result
}

// ProbeAllPackages probes package lists across venvs with bounded
// parallelism. Each worker mutates only its own venv's package list, so no
// locking is needed; the pool exists to cap concurrent subprocess spawns.
func (e *Engine) ProbeAllPackages(venvs []*model.VirtualEnv) {
	parallel := e.cfg.Parallel
	if parallel <= 0 {
		parallel = 4
	}
	var g errgroup.Group
	g.SetLimit(parallel)
	for _, v := range venvs {
		v := v
		g.Go(func() error {
			e.prober.ProbePackages(v)
			return nil
		})
	}
	g.Wait()
}

// Prober exposes the engine's prober so callers can probe on demand (lazy
// package loading in the TUI drill-down).
func (e *Engine) Prober() *Prober {
	return e.prober
}

func (e *Engine) useContentIndex() bool {
	return e.cfg.UseMdfind && runtime.GOOS == "darwin"
}

// listSubdirs returns the immediate subdirectories of root. Missing or
// unreadable roots contribute nothing.
func listSubdirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Logger().Debug("skipping unreadable directory",
				slog.String("path", root), slog.String("error", err.Error()))
		}
		return nil
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	return dirs
}

// mdfindByName queries the macOS Spotlight index for files by exact name.
func mdfindByName(name string) []string {
	out, err := runCommand(mdfindTimeout, "mdfind", "kMDItemFSName == "+name)
	if err != nil {
		return nil
	}
	var hits []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			hits = append(hits, line)
		}
	}
	return hits
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
