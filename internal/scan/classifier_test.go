package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProtectedSystemRoots(t *testing.T) {
	c := NewClassifier()

	protected := []string{
		"/usr/bin/python3",
		"/usr/bin/python",
		"/System/Library/Frameworks/Python.framework/Versions/3.9/bin/python3",
		"/Library/Frameworks/Python.framework/Versions/3.11",
	}
	for _, p := range protected {
		assert.True(t, c.IsProtected(p), "expected %s to be protected", p)
	}

	deletable := []string{
		"/home/user/.pyenv/versions/3.12.0",
		"/home/user/projects/app/.venv",
		"/opt/homebrew/Cellar/python@3.12",
		"/tmp/testvenv",
	}
	for _, p := range deletable {
		assert.False(t, c.IsProtected(p), "expected %s to be deletable", p)
	}
}

func TestIsProtectedNeverFails(t *testing.T) {
	c := NewClassifier()

	// Paths need not exist; the check is pure string classification.
	assert.False(t, c.IsProtected("relative/path/that/does/not/exist"))
	assert.False(t, c.IsProtected(""))
}

func TestIsProtectedCustomRoots(t *testing.T) {
	c := &Classifier{Roots: []string{"/srv/shared/python"}}

	assert.True(t, c.IsProtected("/srv/shared/python/3.10/bin/python"))
	assert.False(t, c.IsProtected("/usr/bin/python3"))
}
