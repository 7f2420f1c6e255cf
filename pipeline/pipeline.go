// Package pipeline wires the external collaborators to the comparison engine.
//
// Every stage blocks until its command exits and buffers the whole output
// before the next stage starts. The first failing stage aborts the run; there
// is no retry and no partial result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lattice-substrate/refdoc-parity/bytebuf"
	"github.com/lattice-substrate/refdoc-parity/compare"
	"github.com/lattice-substrate/refdoc-parity/config"
	"github.com/lattice-substrate/refdoc-parity/execrun"
	"github.com/lattice-substrate/refdoc-parity/linediff"
	"github.com/lattice-substrate/refdoc-parity/logging"
	"github.com/lattice-substrate/refdoc-parity/parityerr"
	"github.com/lattice-substrate/refdoc-parity/report"
	"github.com/lattice-substrate/refdoc-parity/snapshot"
)

// Stage names used in errors and logs.
const (
	StageFetch    = "fetch"
	StageFormat   = "format"
	StageActual   = "actual"
	StageExport   = "export"
	StageSnapshot = "snapshot"
)

// Exporter persists a whole artifact.
type Exporter interface {
	Write(path string, data []byte) error
}

// Commands are the argv templates of the three collaborators.
type Commands struct {
	SourceURL string
	Fetch     []string
	Format    []string
	Actual    []string
}

// CommandsFrom extracts the command set of cfg.
func CommandsFrom(cfg *config.Config) Commands {
	return Commands{
		SourceURL: cfg.SourceURL,
		Fetch:     append([]string(nil), cfg.Fetch...),
		Format:    append([]string(nil), cfg.Format...),
		Actual:    append([]string(nil), cfg.Actual...),
	}
}

// SnapshotTarget describes where and how the snapshot literal is written.
type SnapshotTarget struct {
	Path     string
	Constant string
	Dialect  snapshot.Dialect
	Package  string
}

// Pipeline runs the verify, compare, and snapshot procedures.
type Pipeline struct {
	// Runner executes fetch and format.
	Runner execrun.CommandRunner
	// ActualRunner executes the target system; nil means Runner.
	ActualRunner execrun.CommandRunner
	Exporter     Exporter
	Log          *slog.Logger
}

// Reference fetches and formats the canonical reference. When sourcePath is
// set the fetched source is exported there first, and a {source}
// placeholder in the format command refers to it; otherwise the source is
// piped to the formatter's stdin.
func (p *Pipeline) Reference(ctx context.Context, cmds Commands, sourcePath string) (bytebuf.Buffer, error) {
	log := p.logger()
	vars := map[string]string{"url": cmds.SourceURL}

	log.Info("downloading reference source", "url", cmds.SourceURL)
	src, err := p.run(ctx, p.Runner, StageFetch, execrun.Expand(cmds.Fetch, vars), nil)
	if err != nil {
		return bytebuf.Buffer{}, err
	}
	source := bytebuf.New(bytebuf.Source, src)
	if source.Len() == 0 {
		log.Warn("reference source is empty", "url", cmds.SourceURL)
	}
	log.Debug("fetched reference source", "bytes", source.Len())

	usesPath := slices.ContainsFunc(cmds.Format, func(a string) bool {
		return strings.Contains(a, config.SourcePlaceholder)
	})
	var stdin []byte
	if sourcePath != "" {
		if err := p.export(sourcePath, source); err != nil {
			return bytebuf.Buffer{}, err
		}
		vars["source"] = sourcePath
	}
	if usesPath && sourcePath == "" {
		return bytebuf.Buffer{}, parityerr.New(parityerr.ConfigInvalid, StageFormat, "format command references {source} but no source path is configured")
	}
	if !usesPath {
		stdin = source.Bytes()
	}

	log.Info("formatting reference")
	out, err := p.run(ctx, p.Runner, StageFormat, execrun.Expand(cmds.Format, vars), stdin)
	if err != nil {
		return bytebuf.Buffer{}, err
	}
	expected := bytebuf.New(bytebuf.Expected, out)
	log.Info("formatted reference", "bytes", expected.Len())
	return expected, nil
}

// ProduceActual runs the target system and captures its stdout.
func (p *Pipeline) ProduceActual(ctx context.Context, cmds Commands) (bytebuf.Buffer, error) {
	log := p.logger()
	runner := p.ActualRunner
	if runner == nil {
		runner = p.Runner
	}
	log.Info("capturing target output", "argv", cmds.Actual)
	out, err := p.run(ctx, runner, StageActual, execrun.Expand(cmds.Actual, map[string]string{"url": cmds.SourceURL}), nil)
	if err != nil {
		return bytebuf.Buffer{}, err
	}
	actual := bytebuf.New(bytebuf.Actual, out)
	log.Info("captured target output", "bytes", actual.Len())
	return actual, nil
}

// Compare produces both renderings, exports them to paths, and compares
// them. The returned summary describes a mismatch; it is not an error.
func (p *Pipeline) Compare(ctx context.Context, mode report.Mode, runID string, cmds Commands, paths report.Paths) (report.Summary, error) {
	expected, err := p.Reference(ctx, cmds, paths.Source)
	if err != nil {
		return report.Summary{}, err
	}
	if err := p.export(paths.Expected, expected); err != nil {
		return report.Summary{}, err
	}

	actual, err := p.ProduceActual(ctx, cmds)
	if err != nil {
		return report.Summary{}, err
	}
	if err := p.export(paths.Actual, actual); err != nil {
		return report.Summary{}, err
	}

	res := compare.Compare(expected, actual)
	lines := linediff.Build(linediff.Split(expected), linediff.Split(actual))
	p.logger().Info("compared outputs", "outcome", res.Kind.String(), "line_delta", lines.Delta)
	return report.New(runID, mode, cmds.SourceURL, expected, actual, res, lines, paths), nil
}

// Snapshot produces the canonical reference and writes it as a source
// literal to target.Path. No comparison is performed.
func (p *Pipeline) Snapshot(ctx context.Context, cmds Commands, sourcePath string, target SnapshotTarget) (snapshot.Literal, error) {
	if target.Path == "" {
		return snapshot.Literal{}, parityerr.New(parityerr.ConfigInvalid, StageSnapshot, "snapshot path is required")
	}
	expected, err := p.Reference(ctx, cmds, sourcePath)
	if err != nil {
		return snapshot.Literal{}, err
	}
	name := target.Constant
	if name == "" {
		name = snapshot.DefaultName
	}
	dialect := target.Dialect
	if dialect == "" {
		dialect = snapshot.Zig
	}
	lit, err := snapshot.Encode(expected, name, dialect, target.Package)
	if err != nil {
		return snapshot.Literal{}, err
	}
	src := lit.Render()
	if p.Exporter == nil {
		return snapshot.Literal{}, parityerr.New(parityerr.InternalError, StageSnapshot, "no exporter configured")
	}
	if err := p.Exporter.Write(target.Path, src); err != nil {
		return snapshot.Literal{}, wrapExport(target.Path, err)
	}
	p.logger().Info("wrote snapshot", "path", target.Path, "bytes", lit.Len(), "chars", len(src))
	return lit, nil
}

func (p *Pipeline) run(ctx context.Context, r execrun.CommandRunner, stage string, argv []string, stdin []byte) ([]byte, error) {
	if r == nil {
		return nil, parityerr.New(parityerr.InternalError, stage, "no command runner configured")
	}
	if len(argv) == 0 {
		return nil, parityerr.New(parityerr.ConfigInvalid, stage, "empty command")
	}
	out, err := r.Run(ctx, argv, stdin)
	if err != nil {
		return nil, parityerr.Wrap(parityerr.CommandFailed, stage, fmt.Sprintf("%s failed", argv[0]), err)
	}
	return out, nil
}

func (p *Pipeline) export(path string, b bytebuf.Buffer) error {
	if path == "" {
		return nil
	}
	if p.Exporter == nil {
		return parityerr.New(parityerr.InternalError, StageExport, "no exporter configured")
	}
	if err := p.Exporter.Write(path, b.Bytes()); err != nil {
		return wrapExport(path, err)
	}
	p.logger().Debug("exported", "label", string(b.Label()), "path", path, "bytes", b.Len())
	return nil
}

func wrapExport(path string, err error) error {
	var pe *parityerr.Error
	if errors.As(err, &pe) {
		return err
	}
	return parityerr.Wrap(parityerr.InternalIO, StageExport, fmt.Sprintf("write %s", path), err)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log == nil {
		return logging.Discard()
	}
	return p.Log
}
