// Package pipeline drives the two generator passes from configuration:
// read sources, compile, render every file in memory and only then write
// or compare the output directory.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/danmuck/tlgen/internal/config"
	"github.com/danmuck/tlgen/internal/errtable"
	"github.com/danmuck/tlgen/internal/gen"
	"github.com/danmuck/tlgen/internal/gen/apigen"
	"github.com/danmuck/tlgen/internal/gen/errgen"
	"github.com/danmuck/tlgen/internal/observability"
	"github.com/danmuck/tlgen/internal/tl/registry"
	"github.com/danmuck/tlgen/internal/tl/resolve"
	"github.com/danmuck/tlgen/internal/tl/schema"
	"github.com/danmuck/tlgen/pkg/rpcerr"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Pipeline names.
const (
	API    = "api"
	Errors = "errors"
)

// Options tune a run.
type Options struct {
	// Check compares rendered files with the output directory instead of
	// writing them.
	Check bool
}

// Result describes one finished pass.
type Result struct {
	Pipeline string
	Output   string
	Files    []gen.File
	// Stale lists files that differ on disk; only set in check mode.
	Stale []string
}

// StaleError is returned in check mode when generated files are out of date.
type StaleError struct {
	Pipeline string
	Files    []string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s: generated files out of date: %s", e.Pipeline, strings.Join(e.Files, ", "))
}

// RenderAPI compiles the TL schema sources into generated files.
func RenderAPI(cfg config.Config) ([]gen.File, error) {
	srcs, err := readSources(paths(cfg, cfg.API.Sources), ".tl")
	if err != nil {
		return nil, err
	}
	parsed := make([]*schema.File, 0, len(srcs))
	for _, src := range srcs {
		f, err := schema.Parse(src.Path, src.Data)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, f)
	}
	s, err := resolve.Resolve(schema.Merge(parsed...), resolve.Options{TrustDeclaredIDs: !cfg.API.VerifyIDs})
	if err != nil {
		return nil, err
	}
	reg, err := registry.Build(s)
	if err != nil {
		return nil, err
	}
	observability.RecordCombinators("type", len(s.Types()))
	observability.RecordCombinators("function", len(s.Functions()))
	return apigen.Generate(s, reg, apigen.Options{
		Package:       cfg.API.Package,
		RuntimeImport: cfg.API.RuntimeImport,
	})
}

// RenderErrors compiles the error tables into generated files.
func RenderErrors(cfg config.Config) ([]gen.File, error) {
	srcs, err := readSources(paths(cfg, cfg.Errors.Sources), ".tsv", ".txt")
	if err != nil {
		return nil, err
	}
	var entries []errtable.Entry
	for _, src := range srcs {
		var (
			parsed []errtable.Entry
			err    error
		)
		if filepath.Ext(src.Path) == ".tsv" {
			parsed, err = errtable.ParseTSV(src.Path, src.Data)
		} else {
			parsed, err = errtable.Parse(src.Path, src.Data)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}
	classes, err := errtable.Group(entries, cfg.Errors.Codes)
	if err != nil {
		return nil, err
	}
	exact, patterns := 0, 0
	for _, e := range entries {
		if _, ok := rpcerr.SplitPattern(e.Name); ok {
			patterns++
		} else {
			exact++
		}
	}
	observability.RecordErrorEntries("exact", exact)
	observability.RecordErrorEntries("pattern", patterns)

	f, err := errgen.Generate(classes, errgen.Options{
		Package:       cfg.Errors.Package,
		RuntimeImport: cfg.Errors.RuntimeImport,
	})
	if err != nil {
		return nil, err
	}
	return []gen.File{f}, nil
}

type pass struct {
	name   string
	output string
	render func() ([]gen.File, error)
}

func apiPass(cfg config.Config) pass {
	return pass{name: API, output: cfg.Path(cfg.API.Output), render: func() ([]gen.File, error) {
		return RenderAPI(cfg)
	}}
}

func errorsPass(cfg config.Config) pass {
	return pass{name: Errors, output: cfg.Path(cfg.Errors.Output), render: func() ([]gen.File, error) {
		return RenderErrors(cfg)
	}}
}

// RunAPI renders the api pass and writes or checks its output.
func RunAPI(ctx context.Context, cfg config.Config, opts Options) (Result, error) {
	results, err := run(ctx, opts, apiPass(cfg))
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// RunErrors renders the errors pass and writes or checks its output.
func RunErrors(ctx context.Context, cfg config.Config, opts Options) (Result, error) {
	results, err := run(ctx, opts, errorsPass(cfg))
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// RunAll renders both passes concurrently and writes only when both
// rendered; a failure in either leaves both output directories untouched.
func RunAll(ctx context.Context, cfg config.Config, opts Options) ([]Result, error) {
	return run(ctx, opts, apiPass(cfg), errorsPass(cfg))
}

// WriteMetrics dumps the metrics registry when a textfile is configured.
func WriteMetrics(cfg config.Config) error {
	if cfg.Metrics.Textfile == "" {
		return nil
	}
	return observability.WriteTextfile(cfg.Path(cfg.Metrics.Textfile))
}

func run(ctx context.Context, opts Options, passes ...pass) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(passes))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range passes {
		g.Go(func() error {
			files, err := p.render()
			if err != nil {
				return failed(p.name, start, err)
			}
			results[i] = Result{Pipeline: p.name, Output: p.output, Files: files}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// every pass rendered; only now touch the output directories
	var stale error
	for i := range results {
		res := &results[i]
		if opts.Check {
			files, err := gen.Diff(res.Output, res.Files)
			if err != nil {
				return nil, failed(res.Pipeline, start, err)
			}
			res.Stale = files
			if len(files) > 0 {
				err := failed(res.Pipeline, start, &StaleError{Pipeline: res.Pipeline, Files: files})
				if stale == nil {
					stale = err
				}
				continue
			}
		} else if err := gen.Write(res.Output, res.Files); err != nil {
			return nil, failed(res.Pipeline, start, err)
		}
		observability.RecordPass(res.Pipeline, time.Since(start), true)
		observability.RecordFiles(res.Pipeline, len(res.Files))
		log.Info().
			Str("pipeline", res.Pipeline).
			Str("output", res.Output).
			Int("files", len(res.Files)).
			Bool("check", opts.Check).
			Dur("took", time.Since(start)).
			Msg("pipeline.run")
	}
	if stale != nil {
		return nil, stale
	}
	return results, nil
}

func failed(name string, start time.Time, err error) error {
	observability.RecordPass(name, time.Since(start), false)
	log.Error().Err(err).Str("pipeline", name).Msg("pipeline.run failed")
	return fmt.Errorf("%s: %w", name, err)
}

func paths(cfg config.Config, in []string) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = cfg.Path(p)
	}
	return out
}
