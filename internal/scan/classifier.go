package scan

import (
	"path/filepath"
	"strings"
)

// SystemPythonRoots are OS- and vendor-owned locations whose Python
// installations must never be deleted by this tool. The list is deliberately
// broad: a false positive only blocks a deletion, a false negative could
// destroy a system interpreter.
var SystemPythonRoots = []string{
	"/usr/bin/python",
	"/usr/bin/python2",
	"/usr/bin/python3",
	"/System/Library/Frameworks/Python.framework",
	"/Library/Frameworks/Python.framework",
	`C:\Windows\System32`,
	`C:\Python`,
}

// Classifier decides whether a path falls under a protected system location.
// Every destructive operation consults it before touching the filesystem.
type Classifier struct {
	Roots []string
}

// NewClassifier returns a classifier over the default system roots.
func NewClassifier() *Classifier {
	return &Classifier{Roots: SystemPythonRoots}
}

// IsProtected reports whether path lies under any protected root. The path
// need not exist; it is made absolute (without resolving symlinks) and tested
// by prefix. Total function, never fails.
func (c *Classifier) IsProtected(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for _, root := range c.Roots {
		// Plain prefix match: the stock roots include bare executable paths
		// like /usr/bin/python3 where the root itself is the protected file.
		if strings.HasPrefix(abs, root) {
			return true
		}
	}
	return false
}
