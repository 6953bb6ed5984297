package stdlibcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdmitry/cclint/internal/checker"
	"github.com/kdmitry/cclint/internal/checker/stdlibcheck"
	"github.com/kdmitry/cclint/internal/frontend/fakefe"
)

const src = "test.c"

func ctxFor(root *fakefe.Node, includes ...string) *checker.AnalysisContext {
	tu := &fakefe.TranslationUnit{Root: root, Incs: includes}
	ac, err := checker.NewAnalysisContext(src, tu, nil)
	if err != nil {
		panic(err)
	}
	return ac
}

// int main() { free(0); return 0; } -- no #include <stdlib.h>.
func TestMissingHeaderForFree(t *testing.T) {
	call := fakefe.Call(fakefe.Loc(src, 1), "free", nil, fakefe.Literal("0"))
	body := fakefe.Compound(call, fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("0")))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := stdlibcheck.New().Run(ctxFor(fakefe.File(fn)))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message(), "stdlib.h")
}

// Same call, but stdlib.h is included: no finding.
func TestHeaderPresentSuppressesFinding(t *testing.T) {
	call := fakefe.Call(fakefe.Loc(src, 1), "free", nil, fakefe.Literal("0"))
	body := fakefe.Compound(call, fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("0")))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := stdlibcheck.New().Run(ctxFor(fakefe.File(fn), "stdlib.h"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// printf("%d %d", x) -- arity mismatch (2 specifiers, 1 argument).
func TestPrintfArityMismatch(t *testing.T) {
	call := fakefe.Call(fakefe.Loc(src, 1), "printf", nil,
		fakefe.Literal(`"%d %d"`), fakefe.Literal("1"))
	body := fakefe.Compound(call, fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("0")))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := stdlibcheck.New().Run(ctxFor(fakefe.File(fn), "stdio.h"))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message(), "expects 2 argument")
}

// printf("%d%%", x) -- "%%" is not a conversion, arity matches.
func TestPrintfPercentEscapeIsSkipped(t *testing.T) {
	call := fakefe.Call(fakefe.Loc(src, 1), "printf", nil,
		fakefe.Literal(`"%d%%"`), fakefe.Literal("1"))
	body := fakefe.Compound(call, fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("0")))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := stdlibcheck.New().Run(ctxFor(fakefe.File(fn), "stdio.h"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// scanf("%d", x) -- missing '&'.
func TestScanfMissingAddressOf(t *testing.T) {
	call := fakefe.Call(fakefe.Loc(src, 1), "scanf", nil,
		fakefe.Literal(`"%d"`), fakefe.DeclRef("x", fakefe.Loc(src, 1), nil))
	body := fakefe.Compound(call, fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("0")))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := stdlibcheck.New().Run(ctxFor(fakefe.File(fn), "stdio.h"))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message(), "missing '&'")
}

// scanf("%d", &x) -- well-formed.
func TestScanfWithAddressOfIsNotFlagged(t *testing.T) {
	x := fakefe.DeclRef("x", fakefe.Loc(src, 1), nil)
	call := fakefe.Call(fakefe.Loc(src, 1), "scanf", nil,
		fakefe.Literal(`"%d"`), fakefe.AddressOf(x))
	body := fakefe.Compound(call, fakefe.Return(fakefe.Loc(src, 2), fakefe.Literal("0")))
	fn := fakefe.FuncDecl("main", fakefe.Loc(src, 1), nil, body)

	findings, err := stdlibcheck.New().Run(ctxFor(fakefe.File(fn), "stdio.h"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}
