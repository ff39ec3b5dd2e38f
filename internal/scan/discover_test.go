package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pysweep/internal/model"
)

// newTestConfig wires the engine to synthetic roots only, so discovery
// never touches the real home directory or PATH.
func newTestConfig() Config {
	return Config{
		ManagerPaths:     map[string][]string{},
		ProjectVenvNames: model.ProjectVenvNames,
		Parallel:         2,
	}
}

func TestFindInterpretersFromManagerTable(t *testing.T) {
	root := t.TempDir()
	binDir := filepath.Join(root, "3.12.0", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	fakePython(t, binDir, `[]`)

	cfg := newTestConfig()
	cfg.ManagerPaths = map[string][]string{"pyenv": {root}}
	engine := NewEngine(cfg, nil)

	interpreters := engine.FindInterpreters()
	require.Len(t, interpreters, 1)
	assert.Contains(t, interpreters[0].Version, "3.12.1")
	assert.False(t, interpreters[0].IsSystem)
	assert.Greater(t, interpreters[0].SizeBytes, int64(0), "bin/ under a version root gets a size")
}

func TestFindInterpretersDedupAcrossStrategies(t *testing.T) {
	root := t.TempDir()
	binDir := filepath.Join(root, "3.12.0", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	real := fakePython(t, binDir, `[]`)

	// A PATH directory reaching the same interpreter through a symlink.
	pathDir := filepath.Join(t.TempDir(), "shims")
	require.NoError(t, os.MkdirAll(pathDir, 0o755))
	require.NoError(t, os.Symlink(real, filepath.Join(pathDir, "python3")))

	cfg := newTestConfig()
	cfg.ManagerPaths = map[string][]string{"pyenv": {root}}
	cfg.PathEnv = pathDir
	engine := NewEngine(cfg, nil)

	interpreters := engine.FindInterpreters()
	require.Len(t, interpreters, 1, "same resolved path must yield exactly one entity")
	assert.Equal(t, canonicalPath(real), interpreters[0].Path)
}

func TestFindVenvsHomeScan(t *testing.T) {
	home := t.TempDir()

	// An immediate subdirectory that is itself a venv.
	newTestVenv(t, home, "scratch-env", `[]`)
	// A project directory containing a conventionally named venv.
	project := filepath.Join(home, "myproject")
	require.NoError(t, os.MkdirAll(project, 0o755))
	newTestVenv(t, project, ".venv", `[]`)
	// A plain directory contributes nothing.
	require.NoError(t, os.MkdirAll(filepath.Join(home, "documents"), 0o755))

	cfg := newTestConfig()
	cfg.HomeDir = home
	engine := NewEngine(cfg, nil)

	venvs := engine.FindVenvs()
	require.Len(t, venvs, 2)

	names := []string{venvs[0].ProjectName, venvs[1].ProjectName}
	assert.Contains(t, names, "scratch-env")
	assert.Contains(t, names, "myproject")
}

func TestFindVenvsDedupManagerAndHome(t *testing.T) {
	home := t.TempDir()
	venv := newTestVenv(t, home, "shared-env", `[]`)

	cfg := newTestConfig()
	// The home scan and the manager table both reach the same venv.
	cfg.HomeDir = home
	cfg.ManagerPaths = map[string][]string{"pipenv": {home}}
	engine := NewEngine(cfg, nil)

	venvs := engine.FindVenvs()
	require.Len(t, venvs, 1)
	assert.Equal(t, canonicalPath(venv), venvs[0].Path)
}

func TestFindVenvsRecursiveScan(t *testing.T) {
	tree := t.TempDir()
	deep := filepath.Join(tree, "work", "client", "api")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	newTestVenv(t, deep, "venv", `[]`)
	// Skipped trees are never descended into.
	nm := filepath.Join(tree, "node_modules", "pkg")
	require.NoError(t, os.MkdirAll(nm, 0o755))
	newTestVenv(t, nm, "venv", `[]`)

	cfg := newTestConfig()
	cfg.ScanPath = tree
	cfg.MaxDepth = 4
	engine := NewEngine(cfg, nil)

	venvs := engine.FindVenvs()
	require.Len(t, venvs, 1)
	assert.Equal(t, "api", venvs[0].ProjectName)
}

func TestFindVenvsRecursiveScanDepthLimit(t *testing.T) {
	tree := t.TempDir()
	deep := filepath.Join(tree, "a", "b", "c", "d")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	newTestVenv(t, deep, "venv", `[]`)

	cfg := newTestConfig()
	cfg.ScanPath = tree
	cfg.MaxDepth = 2
	engine := NewEngine(cfg, nil)

	assert.Empty(t, engine.FindVenvs(), "venv beyond MaxDepth must not be found")
}

func TestScanProbesPackagesInParallel(t *testing.T) {
	home := t.TempDir()
	newTestVenv(t, home, "env-a", `[{"name":"numpy","version":"1.21.0"}]`)
	newTestVenv(t, home, "env-b", `[{"name":"numpy","version":"1.24.3"}]`)

	cfg := newTestConfig()
	cfg.HomeDir = home
	engine := NewEngine(cfg, nil)

	result := engine.Scan(true)
	require.Len(t, result.Venvs, 2)
	for _, v := range result.Venvs {
		assert.True(t, v.PackagesLoaded)
		require.Len(t, v.Packages, 1)
		assert.Equal(t, "numpy", v.Packages[0].Name)
	}
	assert.False(t, result.ScanTime.IsZero())
}

func TestListSubdirsUnreadableRootContributesNothing(t *testing.T) {
	assert.Empty(t, listSubdirs(filepath.Join(t.TempDir(), "missing")))
}
