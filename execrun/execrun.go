// Package execrun runs the external collaborators of the parity pipeline
// (fetch, format, target invocation) and captures their standard output.
package execrun

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// CommandRunner abstracts command execution so the pipeline can be driven
// with canned output in tests.
//
// Run executes argv with stdin as its standard input and returns everything
// the command wrote to standard output. A non-zero exit, a termination
// signal, or a failure to start is reported as an error; the returned bytes
// are then undefined.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, stdin []byte) ([]byte, error)
}

// OSRunner executes commands on the host.
type OSRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is merged over the inherited environment.
	Env map[string]string
}

// Run executes argv and returns its stdout. Stderr is retained only for the
// error message.
func (r OSRunner) Run(ctx context.Context, argv []string, stdin []byte) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}
	// #nosec G204 -- argv comes from the operator's parity profile.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	if len(r.Env) != 0 {
		keys := make([]string, 0, len(r.Env))
		for k := range r.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		merged := cmd.Environ()
		for _, k := range keys {
			merged = append(merged, fmt.Sprintf("%s=%s", k, r.Env[k]))
		}
		cmd.Env = merged
	}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errOut.String())
		if msg != "" {
			return nil, fmt.Errorf("run %q failed: %w: %s", argv, err, msg)
		}
		return nil, fmt.Errorf("run %q failed: %w", argv, err)
	}
	return out.Bytes(), nil
}

// Expand returns a copy of argv with every "{key}" placeholder replaced by
// vars[key]. Unknown placeholders are left as-is.
func Expand(argv []string, vars map[string]string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		for k, v := range vars {
			a = strings.ReplaceAll(a, "{"+k+"}", v)
		}
		out[i] = a
	}
	return out
}
