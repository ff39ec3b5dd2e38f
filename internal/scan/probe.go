package scan

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pysweep/internal/logging"
	"pysweep/internal/model"
)

const versionProgram = "import sys; print(sys.version)"

// Prober runs bounded, failure-tolerant queries against candidate
// interpreters and venv directories. A zero Prober is not usable; construct
// with NewProber.
type Prober struct {
	Classifier *Classifier
}

func NewProber(c *Classifier) *Prober {
	if c == nil {
		c = NewClassifier()
	}
	return &Prober{Classifier: c}
}

// ProbeInterpreter builds an Interpreter for the given executable. The
// version banner is queried with a bounded timeout; on timeout or non-zero
// exit the version stays empty rather than failing the caller.
func (p *Prober) ProbeInterpreter(execPath string) model.Interpreter {
	abs, err := filepath.Abs(execPath)
	if err != nil {
		abs = execPath
	}

	interp := model.Interpreter{
		Path:     abs,
		IsSystem: p.Classifier.IsProtected(abs),
	}

	if banner, err := runPython(abs, versionProgram, versionProbeTimeout); err == nil {
		interp.Version = firstLine(banner)
	} else {
		logging.Logger().Debug("interpreter version probe failed",
			slog.String("path", abs), slog.String("error", err.Error()))
	}

	interp.Manager = p.classifyInterpreter(abs)

	// Size is only worth computing when the executable sits in a bin/
	// directory under a version root (pyenv/asdf style installs). Anything
	// else would charge the interpreter with an unrelated directory tree.
	parent := filepath.Dir(abs)
	if filepath.Base(parent) == "bin" {
		versionDir := filepath.Dir(parent)
		if info, err := os.Stat(versionDir); err == nil && info.IsDir() {
			interp.SizeBytes, _ = DirSize(versionDir)
		}
	}

	return interp
}

// classifyInterpreter applies ordered path-substring rules; first match wins.
func (p *Prober) classifyInterpreter(path string) model.Manager {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, ".pyenv"):
		return model.ManagerPyenv
	case strings.Contains(lower, ".asdf"):
		return model.ManagerAsdf
	case strings.Contains(lower, "conda") || strings.Contains(lower, "miniconda") || strings.Contains(lower, "anaconda"):
		return model.ManagerConda
	case strings.Contains(lower, "homebrew") || strings.Contains(lower, "cellar"):
		return model.ManagerHomebrew
	case p.Classifier.IsProtected(path):
		return model.ManagerSystem
	default:
		return model.ManagerUnknown
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimRight(s[:i], "\r")
	}
	return s
}

func modTime(path string) *time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	t := info.ModTime()
	return &t
}
