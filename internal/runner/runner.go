// Package runner wires a Frontend and the fixed checker pipeline into a
// single per-source analysis, turning a parse failure into a one-finding
// infrastructure report instead of a propagated error.
package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kdmitry/cclint/internal/checker"
	"github.com/kdmitry/cclint/internal/checker/memorycheck"
	"github.com/kdmitry/cclint/internal/checker/numcheck"
	"github.com/kdmitry/cclint/internal/checker/stdlibcheck"
	"github.com/kdmitry/cclint/internal/checker/varcheck"
	"github.com/kdmitry/cclint/pkg/cursor"
	"github.com/kdmitry/cclint/pkg/finding"
)

// Options controls one Runner's behavior.
type Options struct {
	CompileArgs       []string
	EnableSuggestions bool
	// StopOnError short-circuits the checker pipeline as soon as any
	// checker so far has produced a SeverityError finding.
	StopOnError bool
}

// Runner parses one source file and runs the fixed checker order against
// it: memory, variable, stdlib, then numeric/control-flow. Each checker
// works from the translation unit alone and reads no other checker's
// results. Runner holds no
// state across Analyze calls; a single instance is safe to reuse
// sequentially but not concurrently, since the checkers it owns (notably
// memorycheck) are not safe for concurrent Run calls on the same
// instance. Use New per goroutine for concurrent multi-source analysis.
type Runner struct {
	frontend cursor.Frontend
	opts     Options
	checkers []checker.Checker
	log      *zap.Logger
}

// New constructs a Runner over the given frontend and options.
func New(frontend cursor.Frontend, opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		frontend: frontend,
		opts:     opts,
		log:      log,
		checkers: []checker.Checker{
			memorycheck.New(),
			varcheck.New(),
			stdlibcheck.New(),
			numcheck.New(),
		},
	}
}

// Analyze parses sourcePath and runs every checker over it, returning a
// single sorted Report. A parse failure never returns a Go error from
// this method: it is represented as one SeverityError, CategoryInfrastructure
// finding at line 0, per the documented recovery behavior.
func (r *Runner) Analyze(ctx context.Context, sourcePath string) (finding.Report, error) {
	tu, err := r.frontend.Parse(sourcePath, r.opts.CompileArgs)
	if err != nil {
		r.log.Warn("parse failed", zap.String("source", sourcePath), zap.Error(err))
		f, ferr := finding.New(finding.CategoryInfrastructure, finding.SeverityError,
			fmt.Sprintf("failed to parse: %s", err), sourcePath, 0)
		if ferr != nil {
			return finding.Report{}, ferr
		}
		return finding.NewReport(sourcePath, []finding.Finding{f}, r.opts.EnableSuggestions), nil
	}
	defer tu.Dispose()

	analysisCtx, err := checker.NewAnalysisContext(sourcePath, tu, r.opts.CompileArgs)
	if err != nil {
		return finding.Report{}, err
	}

	var all []finding.Finding
	for _, ck := range r.checkers {
		select {
		case <-ctx.Done():
			return finding.Report{}, ctx.Err()
		default:
		}

		findings, err := ck.Run(analysisCtx)
		if err != nil {
			return finding.Report{}, fmt.Errorf("checker %s: %w", ck.Name(), err)
		}
		all = append(all, findings...)

		if r.opts.StopOnError && hasError(all) {
			break
		}
	}

	return finding.NewReport(sourcePath, all, r.opts.EnableSuggestions), nil
}

func hasError(findings []finding.Finding) bool {
	for _, f := range findings {
		if f.Severity() == finding.SeverityError {
			return true
		}
	}
	return false
}
