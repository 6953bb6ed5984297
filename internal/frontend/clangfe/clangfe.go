//go:build clang

// Package clangfe is the production cursor.Frontend adapter: it wraps
// libclang (via github.com/go-clang/clang-v15) and translates its
// cursor/type model into the engine's cursor.Cursor abstraction. It is
// built only under the "clang" build tag, since it requires libclang to
// be present on the host at link and run time; every other package in
// this module is built and tested without it, against
// internal/frontend/fakefe.
package clangfe

import (
	"fmt"
	"path/filepath"
	"strings"

	clang "github.com/go-clang/clang-v15"

	"github.com/kdmitry/cclint/internal/errs"
	"github.com/kdmitry/cclint/pkg/cursor"
)

func init() {
	cursor.SetLoader(func(path string) error {
		// The loader performs no check: path (LIBCLANG_PATH, possibly
		// empty) is not used and loading always succeeds.
		return nil
	})
	cursor.SetDefaultFrontend(func() (cursor.Frontend, error) {
		return New(), nil
	})
}

// Frontend is the libclang-backed cursor.Frontend.
type Frontend struct {
	index clang.Index
}

var _ cursor.Frontend = (*Frontend)(nil)

// New constructs a Frontend with its own libclang index. excludeDecls
// controls whether declarations from precompiled preambles are excluded
// from the index, mirroring clang_createIndex's first parameter; the
// analyzer always wants full declarations, so it passes 0.
func New() *Frontend {
	return &Frontend{index: clang.NewIndex(0, 0)}
}

// Parse implements cursor.Frontend.
func (f *Frontend) Parse(sourcePath string, compileArgs []string) (cursor.TranslationUnit, error) {
	if err := cursor.EnsureLoaded(); err != nil {
		return nil, err
	}

	unit := f.index.ParseTranslationUnit(sourcePath, compileArgs, nil, 0)
	if !unit.IsValid() {
		return nil, fmt.Errorf("%w: libclang failed to parse %q", errs.ErrParseFailed, sourcePath)
	}

	n := unit.NumDiagnostics()
	for i := uint32(0); i < n; i++ {
		diag := unit.Diagnostic(i)
		if diag.Severity() >= clang.Diagnostic_Error {
			msg := diag.Spelling()
			diag.Dispose()
			unit.Dispose()
			return nil, fmt.Errorf("%w: %s", errs.ErrParseFailed, msg)
		}
		diag.Dispose()
	}

	return &translationUnit{tu: unit, path: sourcePath}, nil
}

type translationUnit struct {
	tu       clang.TranslationUnit
	path     string
	disposed bool
}

var _ cursor.TranslationUnit = (*translationUnit)(nil)

func (t *translationUnit) Cursor() cursor.Cursor {
	root := t.tu.TranslationUnitCursor()
	return &clangCursor{c: root, tuPath: t.path}
}

func (t *translationUnit) Includes() []string {
	var out []string
	t.tu.GetInclusions(func(file clang.File, stack []clang.SourceLocation) {
		out = append(out, filepath.Base(file.Name()))
	})
	return out
}

func (t *translationUnit) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.tu.Dispose()
}

// clangCursor adapts a clang.Cursor to cursor.Cursor.
type clangCursor struct {
	c      clang.Cursor
	tuPath string
}

var _ cursor.Cursor = (*clangCursor)(nil)

func (n *clangCursor) Kind() cursor.Kind {
	switch n.c.Kind() {
	case clang.Cursor_VarDecl:
		return cursor.KindVarDecl
	case clang.Cursor_FunctionDecl:
		return cursor.KindFunctionDecl
	case clang.Cursor_ParmDecl:
		return cursor.KindParmDecl
	case clang.Cursor_CallExpr:
		return cursor.KindCallExpr
	case clang.Cursor_BinaryOperator, clang.Cursor_CompoundAssignOperator:
		return cursor.KindBinaryOperator
	case clang.Cursor_UnaryOperator:
		return cursor.KindUnaryOperator
	case clang.Cursor_DeclRefExpr:
		return cursor.KindDeclRefExpr
	case clang.Cursor_MemberRefExpr:
		return cursor.KindMemberRefExpr
	case clang.Cursor_ArraySubscriptExpr:
		return cursor.KindArraySubscriptExpr
	case clang.Cursor_ReturnStmt:
		return cursor.KindReturnStmt
	case clang.Cursor_IfStmt:
		return cursor.KindIfStmt
	case clang.Cursor_WhileStmt:
		return cursor.KindWhileStmt
	case clang.Cursor_ForStmt:
		return cursor.KindForStmt
	case clang.Cursor_CompoundStmt:
		return cursor.KindCompoundStmt
	case clang.Cursor_BreakStmt:
		return cursor.KindBreakStmt
	case clang.Cursor_ContinueStmt:
		return cursor.KindContinueStmt
	case clang.Cursor_ParenExpr:
		return cursor.KindParenExpr
	case clang.Cursor_StructDecl:
		return cursor.KindStructDecl
	case clang.Cursor_UnionDecl:
		return cursor.KindUnionDecl
	default:
		return cursor.KindUnexposedExpr
	}
}

func (n *clangCursor) Spelling() string { return n.c.Spelling() }

func (n *clangCursor) Tokens() []string {
	tu := n.c.TranslationUnit()
	extent := n.c.Extent()
	tokens := tu.Tokenize(extent)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tu.TokenSpelling(tok)
	}
	return out
}

func (n *clangCursor) Location() cursor.Location {
	file, line, col, _ := n.c.Location().FileLocation()
	name := n.tuPath
	if file.Name() != "" {
		name = file.Name()
	}
	return cursor.Location{File: name, Line: int(line), Column: int(col), HasColumn: true}
}

func (n *clangCursor) Children() []cursor.Cursor {
	var out []cursor.Cursor
	n.c.Visit(func(child, parent clang.Cursor) clang.ChildVisitResult {
		out = append(out, &clangCursor{c: child, tuPath: n.tuPath})
		return clang.ChildVisit_Continue
	})
	return out
}

func (n *clangCursor) Type() cursor.TypeInfo {
	t := n.c.Type()
	switch t.Kind() {
	case clang.Type_Pointer:
		return cursor.TypeInfo{Kind: cursor.TypePointer}
	case clang.Type_ConstantArray:
		size := t.ArraySize()
		return cursor.TypeInfo{Kind: cursor.TypeConstantArray, ArraySize: size, HasArraySize: size >= 0}
	default:
		if strings.Contains(t.Spelling(), "[]") {
			return cursor.TypeInfo{Kind: cursor.TypeConstantArray}
		}
		return cursor.TypeInfo{Kind: cursor.TypeOther}
	}
}

func (n *clangCursor) ReferencedDecl() cursor.Cursor {
	ref := n.c.Referenced()
	if !ref.IsValid() {
		return nil
	}
	return &clangCursor{c: ref, tuPath: n.tuPath}
}

func (n *clangCursor) IsExternStorage() bool {
	return n.c.StorageClass() == clang.SC_Extern
}

func (n *clangCursor) HasInitializer() bool {
	hasInit := false
	n.c.Visit(func(child, parent clang.Cursor) clang.ChildVisitResult {
		hasInit = true
		return clang.ChildVisit_Break
	})
	return hasInit
}
