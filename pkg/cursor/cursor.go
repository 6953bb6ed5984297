// Package cursor defines the capability interface the analysis engine
// requires from a C/C++ frontend, plus a handful of thin helpers over it.
//
// The engine never depends on a concrete parser. It depends on Cursor,
// TranslationUnit and Frontend only. Production code wires a real adapter
// (see internal/frontend/clangfe) behind these interfaces; tests wire a
// scriptable fake (see internal/frontend/fakefe).
package cursor

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/kdmitry/cclint/internal/errs"
)

// Kind identifies the syntactic role of a Cursor, mirroring the subset of
// libclang's CXCursorKind the analyzer reasons about.
type Kind int

// Cursor kinds the checkers dispatch on.
const (
	KindInvalid Kind = iota
	KindVarDecl
	KindFunctionDecl
	KindParmDecl
	KindCallExpr
	KindBinaryOperator
	KindUnaryOperator
	KindDeclRefExpr
	KindMemberRefExpr
	KindArraySubscriptExpr
	KindReturnStmt
	KindIfStmt
	KindWhileStmt
	KindForStmt
	KindCompoundStmt
	KindBreakStmt
	KindContinueStmt
	KindParenExpr
	KindUnexposedExpr
	KindStructDecl
	KindUnionDecl
)

// TypeKind classifies a Cursor's declared type, mirroring the subset of
// libclang's CXTypeKind the analyzer reasons about.
type TypeKind int

// Type kinds the checkers dispatch on.
const (
	TypeUnknown TypeKind = iota
	TypePointer
	TypeConstantArray
	TypeOther
)

// TypeInfo describes the declared type of a Cursor.
type TypeInfo struct {
	Kind TypeKind
	// ArraySize is the constant extent when Kind == TypeConstantArray and
	// HasArraySize is true. An array with unknown extent must never
	// produce an out-of-bounds finding (spec boundary behavior).
	ArraySize    int64
	HasArraySize bool
}

// Location is a source location extracted from a cursor's start extent.
type Location struct {
	File string
	Line int
	// Column is optional; HasColumn reports whether it is known.
	Column    int
	HasColumn bool
}

// UnknownFile is used when a cursor's file cannot be determined.
const UnknownFile = "<unknown>"

// Cursor is a handle to a node in the translation unit's AST.
type Cursor interface {
	Kind() Kind
	// Spelling is the identifier name for declarations and declaration
	// references; empty for nodes with no name.
	Spelling() string
	// Tokens returns the lexeme stream for this cursor in source order.
	// Collection is lazy in the production adapter.
	Tokens() []string
	Location() Location
	Children() []Cursor
	Type() TypeInfo
	// ReferencedDecl resolves a DECL_REF_EXPR (or similar) to the
	// declaration it names. Returns nil when there is none.
	ReferencedDecl() Cursor
	// IsExternStorage reports whether a VAR_DECL carries extern storage.
	IsExternStorage() bool
	// HasInitializer reports whether a VAR_DECL has an initializer.
	HasInitializer() bool
}

// TranslationUnit is the parsed AST for one preprocessed source file.
type TranslationUnit interface {
	// Cursor returns the translation unit's root cursor; its children are
	// the file's top-level declarations.
	Cursor() Cursor
	// Includes returns the basenames of headers pulled in, e.g. "stdio.h".
	Includes() []string
	// Dispose releases any resources owned by the translation unit. It is
	// safe to call more than once.
	Dispose()
}

// Frontend parses a single source file into a TranslationUnit.
type Frontend interface {
	Parse(sourcePath string, compileArgs []string) (TranslationUnit, error)
}

var (
	loadOnce  sync.Once
	loadErr   error
	libclangPath string
)

// EnsureLoaded idempotently initializes the frontend library handle. It is
// safe to call from concurrent first-callers. It honors LIBCLANG_PATH to
// override the dynamic library path searched by the production adapter.
func EnsureLoaded() error {
	loadOnce.Do(func() {
		libclangPath = os.Getenv("LIBCLANG_PATH")
		loadErr = doLoad(libclangPath)
		if loadErr != nil {
			loadErr = wrapFrontendErr(loadErr)
		}
	})
	return loadErr
}

// doLoad is overridden by the production adapter via SetLoader; the
// default here never fails, since the core engine has no real libclang
// dependency of its own (see internal/frontend/clangfe for the real one).
var doLoad = func(path string) error { return nil }

// SetLoader lets a concrete frontend adapter plug in its own idempotent
// initialization routine, invoked the first time EnsureLoaded runs.
func SetLoader(f func(path string) error) {
	doLoad = f
}

// defaultFrontendFactory is overridden by a production adapter's init
// hook (see internal/frontend/clangfe); nil when no such adapter was
// linked in, i.e. a build without the "clang" tag.
var defaultFrontendFactory func() (Frontend, error)

// SetDefaultFrontend registers the Frontend a caller gets from
// DefaultFrontend when none was explicitly configured. A build that
// links in a real adapter calls this from its package init.
func SetDefaultFrontend(f func() (Frontend, error)) {
	defaultFrontendFactory = f
}

// DefaultFrontend constructs the Frontend registered via
// SetDefaultFrontend, or reports ok=false when no adapter registered one
// (the no-tag build).
func DefaultFrontend() (fe Frontend, ok bool, err error) {
	if defaultFrontendFactory == nil {
		return nil, false, nil
	}
	fe, err = defaultFrontendFactory()
	return fe, true, err
}

// TokensOf returns the lexeme sequence for a cursor in source order.
func TokensOf(c Cursor) []string {
	if c == nil {
		return nil
	}
	return c.Tokens()
}

// LocationOf extracts (file, line, optional column) from a cursor's start
// extent. The path is UnknownFile when unavailable.
func LocationOf(c Cursor) Location {
	if c == nil {
		return Location{File: UnknownFile}
	}
	loc := c.Location()
	if loc.File == "" {
		loc.File = UnknownFile
	}
	return loc
}

// IncludesOf returns the set of header basenames pulled into tu.
func IncludesOf(tu TranslationUnit) map[string]bool {
	set := make(map[string]bool)
	if tu == nil {
		return set
	}
	for _, inc := range tu.Includes() {
		set[inc] = true
	}
	return set
}

// ConstantInt attempts to fold a cursor's token stream into a constant
// integer, e.g. "4", "-1", "0". Returns ok=false when the tokens don't
// fold to a single integer literal (deliberately lossy; see spec §4.D).
func ConstantInt(c Cursor) (int64, bool) {
	if c == nil {
		return 0, false
	}
	toks := c.Tokens()
	toks = trimParens(toks)
	if len(toks) == 0 {
		return 0, false
	}
	neg := false
	i := 0
	if toks[0] == "-" {
		neg = true
		i = 1
	}
	if i >= len(toks) {
		return 0, false
	}
	if len(toks) != i+1 {
		// extra trailing tokens invalidate the fold
		return 0, false
	}
	n, err := strconv.ParseInt(toks[i], 10, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func trimParens(toks []string) []string {
	for len(toks) >= 2 && toks[0] == "(" && toks[len(toks)-1] == ")" {
		toks = toks[1 : len(toks)-1]
	}
	return toks
}

// FirstDeclRef does a pre-order search of c and its descendants for the
// first DECL_REF_EXPR, the way a checker resolves "the identifier named
// by this argument/expression" regardless of wrapping parens or a
// leading unary operator (e.g. "&x", "(p)").
func FirstDeclRef(c Cursor) Cursor {
	if c == nil {
		return nil
	}
	if c.Kind() == KindDeclRefExpr {
		return c
	}
	for _, kid := range c.Children() {
		if ref := FirstDeclRef(kid); ref != nil {
			return ref
		}
	}
	return nil
}

// ContainsToken reports whether toks contains the exact lexeme tok.
func ContainsToken(toks []string, tok string) bool {
	for _, t := range toks {
		if t == tok {
			return true
		}
	}
	return false
}

// JoinTokens renders a token stream back into a single spaced string,
// useful for building human-readable finding messages.
func JoinTokens(toks []string) string {
	return strings.Join(toks, " ")
}

// wrapFrontendErr ensures callers can errors.Is against errs.ErrFrontendUnavailable.
func wrapFrontendErr(cause error) error {
	if cause == nil {
		return errs.ErrFrontendUnavailable
	}
	return &frontendErr{cause: cause}
}

type frontendErr struct{ cause error }

func (e *frontendErr) Error() string { return "frontend unavailable: " + e.cause.Error() }
func (e *frontendErr) Unwrap() error { return errs.ErrFrontendUnavailable }
