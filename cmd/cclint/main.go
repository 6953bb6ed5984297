// Command cclint is a static analyzer for C source files: it runs the
// memory-safety, variable-usage, standard-library-misuse and
// numeric/control-flow checkers over each given source and prints a
// report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kdmitry/cclint/internal/config"
	"github.com/kdmitry/cclint/internal/frontend/fakefe"
	"github.com/kdmitry/cclint/internal/logger"
	"github.com/kdmitry/cclint/internal/runner"
	"github.com/kdmitry/cclint/pkg/cursor"
	"github.com/kdmitry/cclint/pkg/finding"
)

var (
	buildVersion string
	buildCommit  string
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.MustLoad(os.Args[1:])
	log := logger.Get(&cfg.Logger).With(zap.String("version", buildVersion), zap.String("commit", buildCommit))
	defer func() { _ = log.Sync() }()

	cmd := newRootCmd(cfg, log)
	return cmd.Execute()
}

func newRootCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cclint SOURCE...",
		Short: "Static analyzer for C source files",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := args
			if len(sources) == 0 {
				sources = cfg.Sources
			}
			if len(sources) == 0 {
				return fmt.Errorf("no source files given")
			}
			return analyzeAll(cmd.Context(), cfg, log, sources)
		},
	}

	cmd.Flags().StringSliceVar((*[]string)(&cfg.CompileArgs), "compile-arg", cfg.CompileArgs,
		"extra argument forwarded to the frontend (repeatable)")
	cmd.Flags().BoolVar((*bool)(&cfg.OutputJSON), "json", bool(cfg.OutputJSON), "emit JSON reports instead of text")
	cmd.Flags().BoolVar((*bool)(&cfg.StopOnError), "stop-on-error", bool(cfg.StopOnError),
		"stop a source's checks at the first error finding")
	cmd.Flags().StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "write reports to this path instead of stdout")

	return cmd
}

func analyzeAll(ctx context.Context, cfg *config.Config, log *zap.Logger, sources []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	frontend, err := newFrontend(cfg)
	if err != nil {
		return err
	}

	opts := runner.Options{
		CompileArgs:       []string(cfg.CompileArgs),
		EnableSuggestions: bool(cfg.EnableSuggestions),
		StopOnError:       bool(cfg.StopOnError),
	}

	reports := make([]finding.Report, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			r := runner.New(frontend, opts, log)
			report, err := r.Analyze(gctx, src)
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", src, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := os.Stdout
	if cfg.OutputPath != "" {
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("opening output path: %w", err)
		}
		defer f.Close()
		out = f
	}

	return writeReports(out, reports, bool(cfg.OutputJSON))
}

func writeReports(w *os.File, reports []finding.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for _, r := range reports {
		if _, err := fmt.Fprint(w, r.FormatText()); err != nil {
			return err
		}
	}
	return nil
}

// newFrontend builds the analyzer's frontend. The production build tags
// a real libclang-backed adapter in under the "clang" build constraint
// (internal/frontend/clangfe); without a registered adapter, cclint still
// links and runs, but every parse fails and each source's report holds a
// single infrastructure finding, since the core engine has no hard
// compile-time dependency on libclang.
func newFrontend(cfg *config.Config) (cursor.Frontend, error) {
	if cfg.LibclangPath != "" {
		os.Setenv("LIBCLANG_PATH", cfg.LibclangPath)
	}
	if err := cursor.EnsureLoaded(); err != nil {
		return nil, fmt.Errorf("loading frontend: %w", err)
	}
	return newPlatformFrontend()
}

// newPlatformFrontend asks the cursor package for a registered production
// adapter (linked in only by a "clang" build, see internal/frontend/clangfe's
// init); absent one, it falls back to fakefe's Frontend with no scripted
// parse, which keeps the no-tag build self-contained.
var newPlatformFrontend = func() (cursor.Frontend, error) {
	if fe, ok, err := cursor.DefaultFrontend(); ok {
		return fe, err
	}
	return &fakefe.Frontend{Err: fmt.Errorf("no C frontend built into this binary; build with -tags clang")}, nil
}
