package scan

import (
	"sort"
	"strings"

	"pysweep/internal/model"
)

// Install is one (version, owning venv) occurrence of a package.
type Install struct {
	Version string
	Venv    *model.VirtualEnv
}

// Analyzer cross-references packages over a set of venvs. It holds a
// non-owning reference into the discovery result: it may trigger lazy
// package probing on the venvs but never copies or outlives them. The index
// is rebuilt fully on construction, never incrementally.
type Analyzer struct {
	venvs []model.VirtualEnv
	index map[string][]Install
	names []string // lowercased package names in first-seen order
}

// NewAnalyzer builds the package index. Venvs whose package list is still
// empty are probed first (through the engine's bounded pool) so analysis
// reflects the current on-disk state.
func NewAnalyzer(engine *Engine, venvs []model.VirtualEnv) *Analyzer {
	if engine != nil {
		var pending []*model.VirtualEnv
		for i := range venvs {
			if !venvs[i].PackagesLoaded {
				pending = append(pending, &venvs[i])
			}
		}
		engine.ProbeAllPackages(pending)
	}

	a := &Analyzer{
		venvs: venvs,
		index: make(map[string][]Install),
	}
	for i := range venvs {
		v := &venvs[i]
		for _, pkg := range v.Packages {
			name := strings.ToLower(pkg.Name)
			if _, ok := a.index[name]; !ok {
				a.names = append(a.names, name)
			}
			a.index[name] = append(a.index[name], Install{Version: pkg.Version, Venv: v})
		}
	}
	return a
}

// UniquePackages is the number of distinct (case-folded) package names.
func (a *Analyzer) UniquePackages() int {
	return len(a.index)
}

// Duplicates returns packages installed in more than one venv, keyed by
// lowercased name, each with its installs in venv iteration order.
func (a *Analyzer) Duplicates() map[string][]Install {
	dups := make(map[string][]Install)
	for name, installs := range a.index {
		if len(installs) > 1 {
			dups[name] = installs
		}
	}
	return dups
}

// VersionConflicts returns packages whose installs disagree on version:
// lowercased name to the sorted set of distinct version strings.
func (a *Analyzer) VersionConflicts() map[string][]string {
	conflicts := make(map[string][]string)
	for name, installs := range a.index {
		distinct := map[string]struct{}{}
		for _, inst := range installs {
			distinct[inst.Version] = struct{}{}
		}
		if len(distinct) > 1 {
			versions := make([]string, 0, len(distinct))
			for v := range distinct {
				versions = append(versions, v)
			}
			sort.Strings(versions)
			conflicts[name] = versions
		}
	}
	return conflicts
}

// PackageHit is one package match from a cross-venv search.
type PackageHit struct {
	Package model.Package
	Venv    *model.VirtualEnv
}

// FindPackage returns every package whose name contains pattern
// (case-insensitive), across all venvs.
func (a *Analyzer) FindPackage(pattern string) []PackageHit {
	pattern = strings.ToLower(pattern)
	var hits []PackageHit
	for i := range a.venvs {
		v := &a.venvs[i]
		for _, pkg := range v.Packages {
			if strings.Contains(strings.ToLower(pkg.Name), pattern) {
				hits = append(hits, PackageHit{Package: pkg, Venv: v})
			}
		}
	}
	return hits
}

// TopDuplicates returns up to n duplicated package names ordered by install
// count descending, ties broken by first-seen order.
func (a *Analyzer) TopDuplicates(n int) []string {
	dups := a.Duplicates()
	names := make([]string, 0, len(dups))
	for _, name := range a.names {
		if _, ok := dups[name]; ok {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return len(dups[names[i]]) > len(dups[names[j]])
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
