// Command refdoc-gate runs the repository's required verification gates in
// order and stops at the first failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jessevdk/go-flags"

	"github.com/lattice-substrate/refdoc-parity/parityerr"
)

type gate struct {
	label string
	args  []string
	race  bool
}

type options struct {
	FuzzTime string `long:"fuzztime" value-name:"DURATION" default:"15s" description:"budget for each fuzz gate"`
	NoRace   bool   `long:"no-race" description:"skip the race detector gate (no cgo toolchain)"`
}

type streamRunner interface {
	Run(ctx context.Context, name string, args []string, stdout io.Writer, stderr io.Writer) error
}

type hostRunner struct{}

func gates(opts options) []gate {
	return []gate{
		{label: "go vet", args: []string{"vet", "./..."}},
		{label: "unit tests", args: []string{"test", "./...", "-count=1", "-timeout=10m"}},
		{label: "race tests", args: []string{"test", "./...", "-race", "-count=1", "-timeout=15m"}, race: true},
		{label: "fuzz compare", args: []string{"test", "./compare", "-run=^$", "-fuzz=FuzzCompareProperties", "-fuzztime=" + opts.FuzzTime}},
		{label: "fuzz snapshot", args: []string{"test", "./snapshot", "-run=^$", "-fuzz=FuzzRoundTrip", "-fuzztime=" + opts.FuzzTime}},
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, hostRunner{}))
}

func run(args []string, stdout, stderr io.Writer, runner streamRunner) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag)
	parser.Name = "refdoc-gate"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			if err := writeLine(stdout, fe.Message); err != nil {
				return parityerr.InternalIO.ExitCode()
			}
			return 0
		}
		return writeUsageError(stderr, err.Error())
	}
	if len(rest) != 0 {
		return writeUsageError(stderr, fmt.Sprintf("unknown argument %q", rest[0]))
	}

	var steps []gate
	for _, g := range gates(opts) {
		if g.race && opts.NoRace {
			continue
		}
		steps = append(steps, g)
	}

	ctx := context.Background()
	for i, step := range steps {
		if err := writef(stdout, "[%d/%d] %s\n", i+1, len(steps), step.label); err != nil {
			return parityerr.InternalIO.ExitCode()
		}
		if err := runner.Run(ctx, "go", step.args, stdout, stderr); err != nil {
			if writeErr := writef(stderr, "gate failed: %s: %v\n", step.label, err); writeErr != nil {
				return parityerr.InternalIO.ExitCode()
			}
			return 1
		}
	}

	if err := writeLine(stdout, "all gates passed"); err != nil {
		return parityerr.InternalIO.ExitCode()
	}
	return 0
}

func (hostRunner) Run(ctx context.Context, name string, args []string, stdout io.Writer, stderr io.Writer) error {
	// #nosec G204 -- command and args are fixed repository gate invocations.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}

func writeUsageError(stderr io.Writer, msg string) int {
	if err := writef(stderr, "error: %s\n", msg); err != nil {
		return parityerr.InternalIO.ExitCode()
	}
	return parityerr.CLIUsage.ExitCode()
}

func writeLine(w io.Writer, msg string) error {
	return writef(w, "%s\n", msg)
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	return nil
}
