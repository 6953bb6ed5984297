// Package fakefe is a scriptable, in-memory stand-in for the real C
// frontend, built directly from Go literals. It never runs a real parser;
// checker and runner unit tests build small AST fixtures with it the way
// the teacher's memstore package stands in for postgres behind the same
// storage interface.
package fakefe

import "github.com/kdmitry/cclint/pkg/cursor"

// Node is a hand-built AST node implementing cursor.Cursor.
type Node struct {
	KindVal     cursor.Kind
	Name        string
	Toks        []string
	Loc         cursor.Location
	Kids        []*Node
	TypeVal     cursor.TypeInfo
	RefDecl     *Node
	Extern      bool
	Initializer bool
}

var _ cursor.Cursor = (*Node)(nil)

// Kind implements cursor.Cursor.
func (n *Node) Kind() cursor.Kind { return n.KindVal }

// Spelling implements cursor.Cursor.
func (n *Node) Spelling() string { return n.Name }

// Tokens implements cursor.Cursor.
func (n *Node) Tokens() []string { return n.Toks }

// Location implements cursor.Cursor.
func (n *Node) Location() cursor.Location { return n.Loc }

// Children implements cursor.Cursor.
func (n *Node) Children() []cursor.Cursor {
	out := make([]cursor.Cursor, len(n.Kids))
	for i, k := range n.Kids {
		out[i] = k
	}
	return out
}

// Type implements cursor.Cursor.
func (n *Node) Type() cursor.TypeInfo { return n.TypeVal }

// ReferencedDecl implements cursor.Cursor.
func (n *Node) ReferencedDecl() cursor.Cursor {
	if n.RefDecl == nil {
		return nil
	}
	return n.RefDecl
}

// IsExternStorage implements cursor.Cursor.
func (n *Node) IsExternStorage() bool { return n.Extern }

// HasInitializer implements cursor.Cursor.
func (n *Node) HasInitializer() bool { return n.Initializer }

// TranslationUnit is a scripted cursor.TranslationUnit.
type TranslationUnit struct {
	Root     *Node
	Incs     []string
	Disposed int
}

var _ cursor.TranslationUnit = (*TranslationUnit)(nil)

// Cursor implements cursor.TranslationUnit.
func (t *TranslationUnit) Cursor() cursor.Cursor { return t.Root }

// Includes implements cursor.TranslationUnit.
func (t *TranslationUnit) Includes() []string { return t.Incs }

// Dispose implements cursor.TranslationUnit.
func (t *TranslationUnit) Dispose() { t.Disposed++ }

// Frontend is a scripted cursor.Frontend: it returns a preset translation
// unit or a preset error, and counts invocations.
type Frontend struct {
	TU    *TranslationUnit
	Err   error
	Calls int
}

var _ cursor.Frontend = (*Frontend)(nil)

// Parse implements cursor.Frontend.
func (f *Frontend) Parse(_ string, _ []string) (cursor.TranslationUnit, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.TU, nil
}

// --- builders -----------------------------------------------------------

// Loc is a convenience constructor for cursor.Location with no column.
func Loc(file string, line int) cursor.Location {
	return cursor.Location{File: file, Line: line}
}

// File builds the translation unit's root cursor from top-level decls.
func File(decls ...*Node) *Node {
	return &Node{KindVal: cursor.KindInvalid, Kids: decls}
}

// PointerType is the TypeInfo for any pointer-typed declaration.
func PointerType() cursor.TypeInfo { return cursor.TypeInfo{Kind: cursor.TypePointer} }

// ArrayType is the TypeInfo for a constant-size array of the given extent.
func ArrayType(size int64) cursor.TypeInfo {
	return cursor.TypeInfo{Kind: cursor.TypeConstantArray, ArraySize: size, HasArraySize: true}
}

// UnknownArrayType is the TypeInfo for an array whose extent is not known.
func UnknownArrayType() cursor.TypeInfo {
	return cursor.TypeInfo{Kind: cursor.TypeConstantArray}
}

// OtherType is the TypeInfo for any non-pointer, non-array declaration.
func OtherType() cursor.TypeInfo { return cursor.TypeInfo{Kind: cursor.TypeOther} }

// VarDecl builds a VAR_DECL cursor. initToks is the full declaration's
// token stream (used to detect a NULL/0-ending initializer); init is the
// initializer expression itself (nil when there is none, or when it
// isn't interesting to model, e.g. a plain struct literal).
func VarDecl(name string, loc cursor.Location, typ cursor.TypeInfo, initToks []string, init *Node, hasInit, extern bool) *Node {
	var kids []*Node
	if init != nil {
		kids = []*Node{init}
	}
	return &Node{
		KindVal:     cursor.KindVarDecl,
		Name:        name,
		Loc:         loc,
		TypeVal:     typ,
		Toks:        initToks,
		Kids:        kids,
		Initializer: hasInit,
		Extern:      extern,
	}
}

// ParmDecl builds a PARM_DECL cursor.
func ParmDecl(name string, typ cursor.TypeInfo) *Node {
	return &Node{KindVal: cursor.KindParmDecl, Name: name, TypeVal: typ}
}

// FuncDecl builds a FUNCTION_DECL cursor. params are PARM_DECLs, body is
// the function's COMPOUND_STMT (built with Compound).
func FuncDecl(name string, loc cursor.Location, params []*Node, body *Node) *Node {
	kids := append(append([]*Node{}, params...), body)
	return &Node{KindVal: cursor.KindFunctionDecl, Name: name, Loc: loc, Kids: kids}
}

// Compound builds a COMPOUND_STMT from an ordered statement list.
func Compound(stmts ...*Node) *Node {
	return &Node{KindVal: cursor.KindCompoundStmt, Kids: stmts}
}

// DeclRef builds a DECL_REF_EXPR referencing decl (may be nil when the
// declaration isn't modeled, e.g. an unresolved global).
func DeclRef(name string, loc cursor.Location, decl *Node) *Node {
	return &Node{KindVal: cursor.KindDeclRefExpr, Name: name, Loc: loc, RefDecl: decl}
}

// Assign builds a BINARY_OPERATOR representing "target = rhs", where
// target is wrapped as a DeclRef and rhs is an arbitrary expression
// cursor. toks is the full flattened token stream of the statement
// (including "=") used by checkers that scan tokens directly.
func Assign(loc cursor.Location, target, rhs *Node, toks []string) *Node {
	return &Node{
		KindVal: cursor.KindBinaryOperator,
		Loc:     loc,
		Toks:    toks,
		Kids:    []*Node{target, rhs},
	}
}

// Literal builds a bare expression cursor carrying only tokens, used for
// right-hand sides like "NULL", "0" or arbitrary non-pointer expressions.
func Literal(toks ...string) *Node {
	return &Node{KindVal: cursor.KindUnexposedExpr, Toks: toks}
}

// Call builds a CALL_EXPR. callee is the resolved or textual function
// name; refDecl is optional (set when the declaration was resolved).
func Call(loc cursor.Location, callee string, refDecl *Node, args ...*Node) *Node {
	return &Node{KindVal: cursor.KindCallExpr, Name: callee, Loc: loc, RefDecl: refDecl, Kids: args}
}

// AddressOf builds a UNARY_OPERATOR "&x".
func AddressOf(operand *Node) *Node {
	return &Node{KindVal: cursor.KindUnaryOperator, Toks: []string{"&"}, Kids: []*Node{operand}}
}

// Deref builds a UNARY_OPERATOR "*p" dereference.
func Deref(loc cursor.Location, operand *Node) *Node {
	return &Node{KindVal: cursor.KindUnaryOperator, Loc: loc, Toks: []string{"*"}, Kids: []*Node{operand}}
}

// ExprStmt wraps an expression so it can sit directly in a Compound's
// statement list (real libclang exposes the expression cursor itself; we
// mirror that by just using the expression node directly, ExprStmt is a
// no-op retained for readability at call sites).
func ExprStmt(expr *Node) *Node { return expr }

// Subscript builds an ARRAY_SUBSCRIPT_EXPR "a[i]".
func Subscript(loc cursor.Location, base, index *Node) *Node {
	return &Node{KindVal: cursor.KindArraySubscriptExpr, Loc: loc, Kids: []*Node{base, index}}
}

// Member builds a MEMBER_REF_EXPR "p->f".
func Member(loc cursor.Location, base *Node, field string) *Node {
	return &Node{KindVal: cursor.KindMemberRefExpr, Loc: loc, Name: field, Kids: []*Node{base}}
}

// Return builds a RETURN_STMT. expr may be nil for "return;".
func Return(loc cursor.Location, expr *Node) *Node {
	var kids []*Node
	if expr != nil {
		kids = []*Node{expr}
	}
	return &Node{KindVal: cursor.KindReturnStmt, Loc: loc, Kids: kids}
}

// If builds an IF_STMT. elseBranch may be nil. condToks is the
// condition's flattened token stream, used for guard-shape matching.
func If(loc cursor.Location, condToks []string, then, elseBranch *Node) *Node {
	cond := &Node{KindVal: cursor.KindUnexposedExpr, Toks: condToks}
	kids := []*Node{cond, then}
	if elseBranch != nil {
		kids = append(kids, elseBranch)
	}
	return &Node{KindVal: cursor.KindIfStmt, Loc: loc, Kids: kids}
}

// While builds a WHILE_STMT from the condition's token stream and body.
func While(loc cursor.Location, condToks []string, body *Node) *Node {
	cond := &Node{KindVal: cursor.KindUnexposedExpr, Toks: condToks}
	return &Node{KindVal: cursor.KindWhileStmt, Loc: loc, Kids: []*Node{cond, body}}
}

// For builds a FOR_STMT from the init/cond/inc clauses' token streams
// (empty slices for omitted clauses, e.g. for(;;)) and body.
func For(loc cursor.Location, initToks, condToks, incToks []string, body *Node) *Node {
	clause := func(toks []string) *Node { return &Node{KindVal: cursor.KindUnexposedExpr, Toks: toks} }
	return &Node{
		KindVal: cursor.KindForStmt,
		Loc:     loc,
		Kids:    []*Node{clause(initToks), clause(condToks), clause(incToks), body},
	}
}

// Break builds a BREAK_STMT.
func Break(loc cursor.Location) *Node { return &Node{KindVal: cursor.KindBreakStmt, Loc: loc} }

// Continue builds a CONTINUE_STMT.
func Continue(loc cursor.Location) *Node { return &Node{KindVal: cursor.KindContinueStmt, Loc: loc} }
