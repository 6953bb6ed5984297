package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdmitry/cclint/internal/frontend/fakefe"
	"github.com/kdmitry/cclint/internal/runner"
	"github.com/kdmitry/cclint/pkg/finding"
)

const src = "test.c"

func TestAnalyzeRecoversFromParseFailure(t *testing.T) {
	fe := &fakefe.Frontend{Err: errors.New("boom")}
	r := runner.New(fe, runner.Options{}, nil)

	report, err := r.Analyze(context.Background(), src)
	require.NoError(t, err)

	findings := report.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, finding.CategoryInfrastructure, findings[0].Category())
	assert.Equal(t, finding.SeverityError, findings[0].Severity())
	assert.Equal(t, 0, findings[0].Line())
	assert.Equal(t, 1, fe.Calls)
}

func TestAnalyzeCleanSourceProducesNoFindings(t *testing.T) {
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil,
		fakefe.Compound(fakefe.Return(fakefe.Loc(src, 1), fakefe.Literal("0"))))
	tu := &fakefe.TranslationUnit{Root: fakefe.File(fn)}
	fe := &fakefe.Frontend{TU: tu}

	r := runner.New(fe, runner.Options{EnableSuggestions: true}, nil)
	report, err := r.Analyze(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, report.Findings())
	assert.Equal(t, 1, tu.Disposed)
}

func TestAnalyzeStopOnErrorShortCircuits(t *testing.T) {
	mallocCall := fakefe.Call(fakefe.Loc(src, 1), "malloc", nil, fakefe.Literal("4"))
	p := fakefe.VarDecl("p", fakefe.Loc(src, 1), fakefe.PointerType(),
		[]string{"malloc", "(", "4", ")"}, mallocCall, true, false)
	pRef := fakefe.DeclRef("p", fakefe.Loc(src, 2), p)
	free1 := fakefe.Call(fakefe.Loc(src, 2), "free", nil, pRef)
	pRef2 := fakefe.DeclRef("p", fakefe.Loc(src, 3), p)
	free2 := fakefe.Call(fakefe.Loc(src, 3), "free", nil, pRef2)
	body := fakefe.Compound(p, free1, free2, fakefe.Return(fakefe.Loc(src, 4), fakefe.Literal("0")))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	tu := &fakefe.TranslationUnit{Root: fakefe.File(fn)}
	fe := &fakefe.Frontend{TU: tu}

	r := runner.New(fe, runner.Options{StopOnError: true}, nil)
	report, err := r.Analyze(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, report.HasErrors())
	// The stdlib checker would flag malloc/free without <stdlib.h>; after
	// the memory checker's double-free error no later checker runs.
	for _, f := range report.Findings() {
		assert.Equal(t, finding.CategoryMemory, f.Category())
	}
}
