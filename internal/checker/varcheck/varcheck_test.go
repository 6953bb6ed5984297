package varcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdmitry/cclint/internal/checker"
	"github.com/kdmitry/cclint/internal/checker/varcheck"
	"github.com/kdmitry/cclint/internal/frontend/fakefe"
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

// int g;
func TestFileScopeDeclWithoutInitializer(t *testing.T) {
	g := fakefe.VarDecl("g", fakefe.Loc(src, 1), fakefe.OtherType(), nil, nil, false, false)

	findings, err := varcheck.New().Run(ctxFor(fakefe.File(g)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message(), `"g"`)
}

// extern int g; is not flagged.
func TestExternDeclIsNotFlagged(t *testing.T) {
	g := fakefe.VarDecl("g", fakefe.Loc(src, 1), fakefe.OtherType(), nil, nil, false, true)

	findings, err := varcheck.New().Run(ctxFor(fakefe.File(g)))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// int main() { int x; return x; }
func TestUseBeforeAssignment(t *testing.T) {
	x := fakefe.VarDecl("x", fakefe.Loc(src, 1), fakefe.OtherType(), nil, nil, false, false)
	xRef := fakefe.DeclRef("x", fakefe.Loc(src, 2), x)
	body := fakefe.Compound(x, fakefe.Return(fakefe.Loc(src, 2), xRef))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := varcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message(), "used before assignment")
}

// int main() { int x = 0; return x; }
func TestAssignedBeforeUseIsNotFlagged(t *testing.T) {
	x := fakefe.VarDecl("x", fakefe.Loc(src, 1), fakefe.OtherType(), []string{"0"}, fakefe.Literal("0"), true, false)
	xRef := fakefe.DeclRef("x", fakefe.Loc(src, 2), x)
	body := fakefe.Compound(x, fakefe.Return(fakefe.Loc(src, 2), xRef))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := varcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// int main(int x) { return x; } -- parameters start assigned.
func TestParamsAreAssigned(t *testing.T) {
	param := fakefe.ParmDecl("x", fakefe.OtherType())
	xRef := fakefe.DeclRef("x", fakefe.Loc(src, 1), param)
	body := fakefe.Compound(fakefe.Return(fakefe.Loc(src, 1), xRef))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), []*fakefe.Node{param}, body)

	findings, err := varcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// int main() { int x; x; x = x; return x; } -- two uses before the
// assignment, reported once per function.
func TestDedupPerFunction(t *testing.T) {
	x := fakefe.VarDecl("x", fakefe.Loc(src, 1), fakefe.OtherType(), nil, nil, false, false)
	xRefStmt := fakefe.DeclRef("x", fakefe.Loc(src, 2), x)
	xRefRHS := fakefe.DeclRef("x", fakefe.Loc(src, 2), x)
	assign := fakefe.Assign(fakefe.Loc(src, 2), fakefe.DeclRef("x", fakefe.Loc(src, 2), x), xRefRHS, []string{"x", "=", "x"})
	xRef2 := fakefe.DeclRef("x", fakefe.Loc(src, 3), x)
	body := fakefe.Compound(x, fakefe.ExprStmt(xRefStmt), assign, fakefe.Return(fakefe.Loc(src, 3), xRef2))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := varcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
}
