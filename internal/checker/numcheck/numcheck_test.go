package numcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdmitry/cclint/internal/checker"
	"github.com/kdmitry/cclint/internal/checker/numcheck"
	"github.com/kdmitry/cclint/internal/frontend/fakefe"
	"github.com/kdmitry/cclint/pkg/finding"
)

const src = "test.c"

func ctxFor(root *fakefe.Node) *checker.AnalysisContext {
	tu := &fakefe.TranslationUnit{Root: root}
	ac, err := checker.NewAnalysisContext(src, tu, nil)
	if err != nil {
		panic(err)
	}
	return ac
}

// int main() { int x = 1 / 0; return 0; }
func TestDivisionByZeroLiteral(t *testing.T) {
	bin := fakeDivision()
	body := fakefe.Compound(bin, fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("0")))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, finding.SeverityError, findings[0].Severity())
	assert.Equal(t, "division by zero", findings[0].Message())
}

func fakeDivision() *fakefe.Node {
	return fakefe.Assign(fakefe.Loc(src, 1),
		fakefe.DeclRef("x", fakefe.Loc(src, 1), nil),
		fakefe.Literal("1", "/", "0"),
		[]string{"x", "=", "1", "/", "0"})
}

// int main() { while (1) { } return 0; } -- no break, infinite.
func TestInfiniteWhileWithoutBreak(t *testing.T) {
	loop := fakefe.While(fakefe.Loc(src, 1), []string{"1"}, fakefe.Compound())
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "loop never terminates", findings[0].Message())
}

// int main() { return 0; while (1) { } } -- the loop is unreachable, so it
// is reported once as unreachable code and never as an infinite loop.
func TestInfiniteLoopAfterReturnIsUnreachableNotInfinite(t *testing.T) {
	loop := fakefe.While(fakefe.Loc(src, 2), []string{"1"}, fakefe.Compound())
	body := fakefe.Compound(
		fakefe.Return(fakefe.Loc(src, 1), fakefe.Literal("0")),
		loop,
	)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "unreachable code", findings[0].Message())
}

// int main() { int g; while (g) { } } -- bare identifier, never modified.
func TestWhileSingleIdentifierNotModifiedIsInfinite(t *testing.T) {
	loop := fakefe.While(fakefe.Loc(src, 1), []string{"g"}, fakefe.Compound())
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "loop never terminates", findings[0].Message())
}

// int main() { int g; while (g) { g = 0; } } -- body reassigns g.
func TestWhileSingleIdentifierModifiedIsNotInfinite(t *testing.T) {
	loop := fakefe.While(fakefe.Loc(src, 1), []string{"g"},
		fakefe.Compound(fakefe.ExprStmt(fakefe.Literal("g", "=", "0"))))
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// int main() { int i; while (i < 10) { } } -- relational, i never touched.
func TestWhileRelationalNotModifiedIsInfinite(t *testing.T) {
	loop := fakefe.While(fakefe.Loc(src, 1), []string{"i", "<", "10"}, fakefe.Compound())
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "loop never terminates", findings[0].Message())
}

// int main() { int i; while (i < 10) { i++; } } -- relational, i incremented.
func TestWhileRelationalModifiedIsNotInfinite(t *testing.T) {
	loop := fakefe.While(fakefe.Loc(src, 1), []string{"i", "<", "10"},
		fakefe.Compound(fakefe.ExprStmt(fakefe.Literal("i", "++"))))
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// int main() { for (;;) { } return 0; } -- infinite.
func TestInfiniteForWithoutBreak(t *testing.T) {
	loop := fakefe.For(fakefe.Loc(src, 1), nil, nil, nil, fakefe.Compound())
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

// int main() { return 0; return 1; } -- unreachable.
func TestUnreachableAfterReturn(t *testing.T) {
	body := fakefe.Compound(
		fakefe.Return(fakefe.Loc(src, 1), fakefe.Literal("0")),
		fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("1")),
	)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "unreachable code", findings[0].Message())
}

// int main() { return 0; return 1; return 2; } -- only one finding, even
// though a second terminator follows the first unreachable statement.
func TestUnreachableOnlyFiresOnceWithMultipleTerminators(t *testing.T) {
	body := fakefe.Compound(
		fakefe.Return(fakefe.Loc(src, 1), fakefe.Literal("0")),
		fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("1")),
		fakefe.Return(fakefe.Loc(src, 3), fakefe.Literal("2")),
	)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "unreachable code", findings[0].Message())
}

// int main() { for (int i = 0; i == 10; i++) { } } -- equality condition,
// unconditionally flagged regardless of increment direction.
func TestForEqualityConditionIsUnconditionallyInfinite(t *testing.T) {
	loop := fakefe.For(fakefe.Loc(src, 1), []string{"i", "=", "0"}, []string{"i", "==", "10"}, []string{"i", "++"}, fakefe.Compound())
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "loop never terminates", findings[0].Message())
}

// int main() { for (int i = 0; i < 10; i++) { } } -- normal incrementing
// loop toward the bound, never flagged.
func TestForNormalIncrementingLoopIsNotFlagged(t *testing.T) {
	loop := fakefe.For(fakefe.Loc(src, 1), []string{"i", "=", "0"}, []string{"i", "<", "10"}, []string{"i", "++"}, fakefe.Compound())
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// int main() { for (int i = 0; i < 10; i--) { } } -- increment moves away
// from satisfying the bound, flagged.
func TestForWrongDirectionIncrementIsInfinite(t *testing.T) {
	loop := fakefe.For(fakefe.Loc(src, 1), []string{"i", "=", "0"}, []string{"i", "<", "10"}, []string{"i", "--"}, fakefe.Compound())
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "loop never terminates", findings[0].Message())
}

// int main() { for (int i = 0; i < 10; ) { } } -- no increment clause at
// all, flagged regardless of the relational operator.
func TestForNoIncrementClauseIsInfinite(t *testing.T) {
	loop := fakefe.For(fakefe.Loc(src, 1), []string{"i", "=", "0"}, []string{"i", "<", "10"}, nil, fakefe.Compound())
	body := fakefe.Compound(loop)
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := numcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "loop never terminates", findings[0].Message())
}
