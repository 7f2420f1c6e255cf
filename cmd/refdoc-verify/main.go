// Command refdoc-verify checks that the target system's rendered reference
// document matches the canonical rendering byte for byte.
//
// It downloads the reference source, formats it, runs the target system,
// saves both outputs, and compares them strictly.
//
// Exit codes:
//
//	0  outputs match exactly
//	1  outputs differ
//	2  invalid usage or profile
//	3  an external command failed
//	10 internal I/O error
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/lattice-substrate/refdoc-parity/config"
	"github.com/lattice-substrate/refdoc-parity/execrun"
	"github.com/lattice-substrate/refdoc-parity/export"
	"github.com/lattice-substrate/refdoc-parity/logging"
	"github.com/lattice-substrate/refdoc-parity/parityerr"
	"github.com/lattice-substrate/refdoc-parity/pipeline"
	"github.com/lattice-substrate/refdoc-parity/report"
)

type options struct {
	Config  string `short:"c" long:"config" value-name:"PATH" description:"YAML parity profile overriding the built-in defaults"`
	JSON    bool   `long:"json" description:"print the canonical JSON summary instead of text"`
	Quiet   bool   `short:"q" long:"quiet" description:"only log warnings and errors"`
	Verbose bool   `short:"v" long:"verbose" description:"log debug detail"`
}

// deps are the collaborators run uses; zero fields mean the host defaults.
type deps struct {
	runner   execrun.CommandRunner
	exporter pipeline.Exporter
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, deps{})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, d deps) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "refdoc-verify"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			if err := writeLine(stdout, fe.Message); err != nil {
				return parityerr.InternalIO.ExitCode()
			}
			return 0
		}
		return writeError(stderr, parityerr.Wrap(parityerr.CLIUsage, "", "parse arguments", err))
	}
	if len(rest) != 0 {
		return writeError(stderr, parityerr.New(parityerr.CLIUsage, "", fmt.Sprintf("unexpected argument %q", rest[0])))
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return writeError(stderr, err)
	}
	log, runID := logging.New(stderr, logging.Options{Verbose: opts.Verbose, Quiet: opts.Quiet})

	p := &pipeline.Pipeline{Runner: d.runner, Exporter: d.exporter, Log: log}
	if p.Runner == nil {
		p.Runner = execrun.OSRunner{Env: cfg.Env}
		p.ActualRunner = execrun.OSRunner{Dir: cfg.WorkDir, Env: cfg.Env}
	}
	if p.Exporter == nil {
		p.Exporter = export.Writer{}
	}

	paths := report.Paths{Source: cfg.VerifyPaths.Source, Expected: cfg.VerifyPaths.Expected, Actual: cfg.VerifyPaths.Actual}
	summary, err := p.Compare(ctx, report.ModeVerify, runID, pipeline.CommandsFrom(cfg), paths)
	if err != nil {
		log.Error("verification aborted", "error", err)
		return writeError(stderr, err)
	}

	if opts.JSON {
		err = report.WriteJSON(stdout, summary)
	} else {
		err = report.WriteVerify(stdout, summary)
	}
	if err != nil {
		return writeError(stderr, parityerr.Wrap(parityerr.InternalIO, "", "write report", err))
	}
	if !summary.Passed() {
		return parityerr.ContentMismatch.ExitCode()
	}
	return 0
}

func writeError(stderr io.Writer, err error) int {
	code := parityerr.ClassOf(err).ExitCode()
	if werr := writef(stderr, "error: %v\n", err); werr != nil {
		return parityerr.InternalIO.ExitCode()
	}
	return code
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
