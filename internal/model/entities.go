package model

import "time"

// Manager identifies the tool or convention that created an interpreter
// install or a virtual environment, inferred from its path.
type Manager string

const (
	ManagerPyenv    Manager = "pyenv"
	ManagerAsdf     Manager = "asdf"
	ManagerConda    Manager = "conda"
	ManagerHomebrew Manager = "homebrew"
	ManagerSystem   Manager = "system"
	ManagerUnknown  Manager = "unknown"

	ManagerPipx   Manager = "pipx"
	ManagerPoetry Manager = "poetry"
	ManagerPipenv Manager = "pipenv"
	ManagerHatch  Manager = "hatch"
	ManagerPdm    Manager = "pdm"
	ManagerVenv   Manager = "venv"
)

// Interpreter represents a Python interpreter installation. Identity is the
// canonical (symlink-resolved, absolute) executable path. Instances are
// constructed once per discovery pass and never mutated afterwards.
type Interpreter struct {
	Path      string  `json:"path"`
	Version   string  `json:"version,omitempty"` // raw runtime banner, empty if probe failed
	Manager   Manager `json:"manager"`
	IsSystem  bool    `json:"is_system"`
	SizeBytes int64   `json:"size_bytes"`
}

// VirtualEnv represents a Python virtual environment. Identity is the
// canonical venv root directory. The package list is lazy: empty until
// the first explicit probe, cached afterwards.
type VirtualEnv struct {
	Path          string     `json:"path"`
	Name          string     `json:"name"`
	ProjectName   string     `json:"project_name"`
	PythonExec    string     `json:"python_executable,omitempty"`
	PythonVersion string     `json:"python_version,omitempty"`
	Manager       Manager    `json:"manager"`
	SizeBytes     int64      `json:"size_bytes"`
	LastModified  *time.Time `json:"last_modified,omitempty"`

	Packages       []Package `json:"packages,omitempty"`
	PackagesLoaded bool      `json:"packages_loaded"`
	// DroppedPackages counts malformed pip entries discarded during probing.
	DroppedPackages int `json:"-"`
}

// Package is one installed package inside a single owning venv. The name is
// the identity key and is compared case-insensitively by the analyzer.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// DiscoveryResult is one discovery pass over the filesystem. Entities are
// owned by this result set and discarded when discovery reruns.
type DiscoveryResult struct {
	ScanTime     time.Time     `json:"scan_time"`
	Interpreters []Interpreter `json:"interpreters"`
	Venvs        []VirtualEnv  `json:"venvs"`
}

// TotalInterpreterSize sums the approximate on-disk footprint of all
// discovered interpreters.
func (r *DiscoveryResult) TotalInterpreterSize() int64 {
	var total int64
	for i := range r.Interpreters {
		total += r.Interpreters[i].SizeBytes
	}
	return total
}

// TotalVenvSize sums the on-disk size of all discovered venvs.
func (r *DiscoveryResult) TotalVenvSize() int64 {
	var total int64
	for i := range r.Venvs {
		total += r.Venvs[i].SizeBytes
	}
	return total
}
