package scan

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	versionProbeTimeout = 10 * time.Second
	packageListTimeout  = 15 * time.Second
	uninstallTimeout    = 30 * time.Second
	mdfindTimeout       = 30 * time.Second
)

// runCommand executes a program with a bounded wall-clock timeout and returns
// its stdout. Timeouts and non-zero exits come back as errors so callers can
// degrade to absent data; they are never allowed to hang discovery.
func runCommand(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%s timed out after %s", name, timeout)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// runPython runs a one-line program under the given interpreter.
func runPython(pythonExec, program string, timeout time.Duration) (string, error) {
	return runCommand(timeout, pythonExec, "-c", program)
}
