package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pysweep/internal/model"
)

func analyzerFixture() []model.VirtualEnv {
	return []model.VirtualEnv{
		{
			Path: "/home/u/projects/a/.venv", Name: ".venv", ProjectName: "a",
			PackagesLoaded: true,
			Packages: []model.Package{
				{Name: "numpy", Version: "1.21.0"},
				{Name: "requests", Version: "2.31.0"},
			},
		},
		{
			Path: "/home/u/projects/b/.venv", Name: ".venv", ProjectName: "b",
			PackagesLoaded: true,
			Packages: []model.Package{
				{Name: "NumPy", Version: "1.24.3"},
				{Name: "flask", Version: "3.0.0"},
			},
		},
		{
			Path: "/home/u/projects/c/.venv", Name: ".venv", ProjectName: "c",
			PackagesLoaded: true,
			Packages: []model.Package{
				{Name: "requests", Version: "2.31.0"},
			},
		},
	}
}

func TestAnalyzerDuplicatesAndConflicts(t *testing.T) {
	a := NewAnalyzer(nil, analyzerFixture())

	assert.Equal(t, 3, a.UniquePackages(), "names are case-folded")

	dups := a.Duplicates()
	require.Len(t, dups, 2)

	numpy := dups["numpy"]
	require.Len(t, numpy, 2)
	assert.Equal(t, "1.21.0", numpy[0].Version)
	assert.Equal(t, "a", numpy[0].Venv.ProjectName)
	assert.Equal(t, "1.24.3", numpy[1].Version)
	assert.Equal(t, "b", numpy[1].Venv.ProjectName)

	requests := dups["requests"]
	require.Len(t, requests, 2)
	assert.Equal(t, requests[0].Version, requests[1].Version)

	conflicts := a.VersionConflicts()
	require.Len(t, conflicts, 1, "same-version duplicates are not conflicts")
	assert.Equal(t, []string{"1.21.0", "1.24.3"}, conflicts["numpy"])
}

func TestAnalyzerFindPackage(t *testing.T) {
	a := NewAnalyzer(nil, analyzerFixture())

	hits := a.FindPackage("num")
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Venv.ProjectName)
	assert.Equal(t, "b", hits[1].Venv.ProjectName)

	assert.Empty(t, a.FindPackage("django"))
}

func TestAnalyzerTopDuplicates(t *testing.T) {
	venvs := analyzerFixture()
	// A third numpy install makes it the clear leader.
	venvs = append(venvs, model.VirtualEnv{
		Path: "/home/u/projects/d/.venv", Name: ".venv", ProjectName: "d",
		PackagesLoaded: true,
		Packages:       []model.Package{{Name: "numpy", Version: "1.24.3"}},
	})
	a := NewAnalyzer(nil, venvs)

	top := a.TopDuplicates(10)
	require.Len(t, top, 2)
	assert.Equal(t, "numpy", top[0])
	assert.Equal(t, "requests", top[1])

	assert.Equal(t, []string{"numpy"}, a.TopDuplicates(1))
}

func TestAnalyzerProbesUnloadedVenvs(t *testing.T) {
	home := t.TempDir()
	venvPath := newTestVenv(t, home, "env", `[{"name":"numpy","version":"1.21.0"}]`)

	engine := NewEngine(newTestConfig(), nil)
	v := engine.Prober().ProbeVenv(venvPath)
	require.NotNil(t, v)
	require.False(t, v.PackagesLoaded)

	a := NewAnalyzer(engine, []model.VirtualEnv{*v})
	assert.Equal(t, 1, a.UniquePackages())
}

func TestAnalyzerEmpty(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	assert.Zero(t, a.UniquePackages())
	assert.Empty(t, a.Duplicates())
	assert.Empty(t, a.VersionConflicts())
	assert.Empty(t, a.TopDuplicates(5))
}
