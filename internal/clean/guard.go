// Package clean is the single choke point for every destructive operation.
// Both the scripted --clean mode and the TUI's batch delete route each
// target through Guard individually; there is no bulk bypass.
package clean

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pysweep/internal/logging"
	"pysweep/internal/scan"
)

var (
	// ErrNotFound means the deletion target does not exist.
	ErrNotFound = errors.New("target does not exist")

	// ErrProtected means the target sits under a system-owned root.
	// There is no override flag; this is an unconditional hard stop.
	ErrProtected = errors.New("refusing to delete protected system path")

	// ErrCancelled means the caller declined the confirmation prompt.
	ErrCancelled = errors.New("deletion cancelled")
)

// DeletionError reports an OS-level failure during removal. Partial signals
// that some contents may already have been removed before the failure.
type DeletionError struct {
	Path    string
	Partial bool
	Err     error
}

func (e *DeletionError) Error() string {
	if e.Partial {
		return fmt.Sprintf("deleting %s failed partway (some files may be gone): %v", e.Path, e.Err)
	}
	return fmt.Sprintf("deleting %s failed: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

// Plan is a resolved deletion target. Size is computed during Execute, after
// the safety gate, so a refused plan never pays for a directory walk.
type Plan struct {
	Target string
	IsDir  bool
}

// Options control a single Execute call.
type Options struct {
	DryRun           bool
	SkipConfirmation bool
}

// Result reports what Execute did (or would have done, for a dry run).
type Result struct {
	Target    string
	SizeBytes int64
	DryRun    bool
	Removed   bool
}

// Guard gates all removals: existence check, system-path rejection, size
// computation, dry-run short-circuit, confirmation, then the actual remove.
type Guard struct {
	Classifier *scan.Classifier

	// Confirm is consulted when Options.SkipConfirmation is false. A nil
	// Confirm counts as a declined prompt; destructive defaults are not
	// assumed.
	Confirm func(target string, sizeBytes int64) bool
}

func NewGuard(c *scan.Classifier) *Guard {
	if c == nil {
		c = scan.NewClassifier()
	}
	return &Guard{Classifier: c}
}

// Plan resolves target to an absolute path and verifies it exists.
func (g *Guard) Plan(target string) (*Plan, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
	}
	return &Plan{Target: abs, IsDir: info.IsDir()}, nil
}

// Execute runs the guarded removal. The protected-path check comes first and
// ignores every flag: a protected target is refused before any filesystem
// mutation, dry-run or not.
func (g *Guard) Execute(plan *Plan, opts Options) (*Result, error) {
	if g.Classifier.IsProtected(plan.Target) {
		logging.Logger().Warn("refused protected path", slog.String("target", plan.Target))
		return nil, fmt.Errorf("%w: %s", ErrProtected, plan.Target)
	}

	res := &Result{
		Target:    plan.Target,
		SizeBytes: scan.TargetSize(plan.Target),
		DryRun:    opts.DryRun,
	}

	if opts.DryRun {
		return res, nil
	}

	if !opts.SkipConfirmation {
		if g.Confirm == nil || !g.Confirm(plan.Target, res.SizeBytes) {
			return nil, ErrCancelled
		}
	}

	var err error
	if plan.IsDir {
		err = os.RemoveAll(plan.Target)
	} else {
		err = os.Remove(plan.Target)
	}
	if err != nil {
		// RemoveAll can fail after removing part of the tree; surface
		// that instead of retrying and hiding the extent of the loss.
		_, statErr := os.Stat(plan.Target)
		return nil, &DeletionError{Path: plan.Target, Partial: statErr == nil, Err: err}
	}

	res.Removed = true
	logging.Logger().Info("deleted",
		slog.String("target", plan.Target), slog.Int64("size_bytes", res.SizeBytes))
	return res, nil
}
