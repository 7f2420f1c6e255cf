// Command refdoc-gen inspects or regenerates the target system's embedded
// reference document.
//
// Without flags it downloads and formats the reference, runs the target
// system, saves the source and both outputs, and prints a line-by-line
// diagnostic. It exits 0 whether or not the outputs match.
//
// With --write it downloads and formats the reference and writes it as a
// byte-sequence literal to the snapshot path instead of comparing.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/lattice-substrate/refdoc-parity/config"
	"github.com/lattice-substrate/refdoc-parity/execrun"
	"github.com/lattice-substrate/refdoc-parity/export"
	"github.com/lattice-substrate/refdoc-parity/logging"
	"github.com/lattice-substrate/refdoc-parity/parityerr"
	"github.com/lattice-substrate/refdoc-parity/pipeline"
	"github.com/lattice-substrate/refdoc-parity/report"
	"github.com/lattice-substrate/refdoc-parity/snapshot"
)

type options struct {
	Write   bool   `short:"w" long:"write" description:"regenerate the snapshot source file instead of comparing"`
	Output  string `short:"o" long:"output" value-name:"PATH" description:"snapshot path (overrides the profile)"`
	Dialect string `long:"dialect" value-name:"zig|go" description:"snapshot declaration syntax (overrides the profile)"`
	Config  string `short:"c" long:"config" value-name:"PATH" description:"YAML parity profile overriding the built-in defaults"`
	JSON    bool   `long:"json" description:"print the canonical JSON summary instead of text (compare mode)"`
	Verbose bool   `short:"v" long:"verbose" description:"log debug detail"`
}

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

//nolint:gocyclo,cyclop // mode dispatch is kept linear.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, d deps) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "refdoc-gen"
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
	if opts.Output != "" {
		cfg.Snapshot.Path = opts.Output
	}
	if opts.Dialect != "" {
		cfg.Snapshot.Dialect = opts.Dialect
	}
	dialect, err := snapshot.ParseDialect(cfg.Snapshot.Dialect)
	if err != nil {
		return writeError(stderr, err)
	}
	log, runID := logging.New(stderr, logging.Options{Verbose: opts.Verbose})

	p := &pipeline.Pipeline{Runner: d.runner, Exporter: d.exporter, Log: log}
	if p.Runner == nil {
		p.Runner = execrun.OSRunner{Env: cfg.Env}
		p.ActualRunner = execrun.OSRunner{Dir: cfg.WorkDir, Env: cfg.Env}
	}
	if p.Exporter == nil {
		p.Exporter = export.Writer{}
	}
	cmds := pipeline.CommandsFrom(cfg)

	if opts.Write {
		target := pipeline.SnapshotTarget{
			Path:     cfg.Snapshot.Path,
			Constant: cfg.Snapshot.Constant,
			Dialect:  dialect,
			Package:  cfg.Snapshot.Package,
		}
		if target.Package == "" && dialect == snapshot.Go {
			target.Package = filepath.Base(filepath.Dir(filepath.Clean(cfg.Snapshot.Path)))
			if !snapshot.ValidName(target.Package) {
				target.Package = ""
			}
		}
		lit, err := p.Snapshot(ctx, cmds, cfg.ComparePaths.Source, target)
		if err != nil {
			log.Error("snapshot aborted", "error", err)
			return writeError(stderr, err)
		}
		if err := writef(stdout, "wrote %s (%d bytes as %s constant %q)\n", target.Path, lit.Len(), lit.Dialect, lit.Name); err != nil {
			return parityerr.InternalIO.ExitCode()
		}
		return 0
	}

	paths := report.Paths{Source: cfg.ComparePaths.Source, Expected: cfg.ComparePaths.Expected, Actual: cfg.ComparePaths.Actual}
	summary, err := p.Compare(ctx, report.ModeCompare, runID, cmds, paths)
	if err != nil {
		log.Error("comparison aborted", "error", err)
		return writeError(stderr, err)
	}
	if opts.JSON {
		err = report.WriteJSON(stdout, summary)
	} else {
		err = report.WriteCompare(stdout, summary)
	}
	if err != nil {
		return writeError(stderr, parityerr.Wrap(parityerr.InternalIO, "", "write report", err))
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
