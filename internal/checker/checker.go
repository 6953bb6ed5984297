// Package checker defines the polymorphic Checker abstraction every
// defect-class analyzer implements, plus the read-only context a checker
// receives.
package checker

import (
	"fmt"

	"github.com/kdmitry/cclint/internal/errs"
	"github.com/kdmitry/cclint/pkg/cursor"
	"github.com/kdmitry/cclint/pkg/finding"
)

// AnalysisContext bundles the translation unit and analysis parameters a
// checker needs. It lives for the duration of one source analysis and is
// read-only for checkers: a checker must not mutate the context or the
// translation unit it carries.
type AnalysisContext struct {
	SourcePath  string
	TU          cursor.TranslationUnit
	CompileArgs []string
}

// NewAnalysisContext constructs an AnalysisContext, rejecting nil
// dependencies.
func NewAnalysisContext(sourcePath string, tu cursor.TranslationUnit, compileArgs []string) (*AnalysisContext, error) {
	if tu == nil {
		return nil, fmt.Errorf("%w: translation unit", errs.ErrNilDependency)
	}
	return &AnalysisContext{
		SourcePath:  sourcePath,
		TU:          tu,
		CompileArgs: compileArgs,
	}, nil
}

// Checker is one AST-walking defect-class analyzer. Implementations are
// concrete structs with a stable Name and must not mutate the context or
// the translation unit; any per-translation-unit summary state they carry
// must be documented and reset at the start of each Run.
type Checker interface {
	// Name is a stable identifier for the checker, used in logs.
	Name() string
	// Run walks ctx's translation unit and returns the findings produced.
	Run(ctx *AnalysisContext) ([]finding.Finding, error)
}
