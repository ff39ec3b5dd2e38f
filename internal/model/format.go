package model

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ProjectVenvNames are conventional directory names a project venv lives
// under. A venv with one of these names is displayed by its parent project.
var ProjectVenvNames = []string{".venv", "venv", "env", ".env", "virtualenv"}

// FormatBytes renders a byte count for display, e.g. "1.2 GB".
func FormatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.Bytes(uint64(b))
}

// FormatAge renders a modification time as a relative age, e.g. "3 months ago".
func FormatAge(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return humanize.Time(*t)
}

// ProjectNameFor infers a display name for a venv path. Conventionally named
// venvs (.venv, venv, ...) take the name of their parent project directory.
func ProjectNameFor(path string) string {
	base := filepath.Base(path)
	for _, n := range ProjectVenvNames {
		if base == n {
			return filepath.Base(filepath.Dir(path))
		}
	}
	return base
}

// ShortenPath truncates a long path for display, keeping the last components.
func ShortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	parts := strings.Split(path, string(os.PathSeparator))
	if len(parts) <= 3 {
		return path
	}
	return "..." + string(os.PathSeparator) + filepath.Join(parts[len(parts)-2:]...)
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
