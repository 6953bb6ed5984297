// Package memorycheck implements the flow-sensitive pointer-safety
// checker: a per-function pointer lattice (uninitialized/null/freed/
// valid), guard-refined branch reasoning, and a small cross-function
// summary (leaky functions, unsafe pointer returners) carried for the
// lifetime of one translation unit.
//
// This is the hardest of the four checkers; it is also, by design, a
// lossy heuristic: the lattice folds silently to "no information" for
// any syntactic shape it doesn't recognize, trading soundness for low
// noise on idiomatic C.
package memorycheck

import (
	"fmt"

	"github.com/kdmitry/cclint/internal/checker"
	"github.com/kdmitry/cclint/pkg/cursor"
	"github.com/kdmitry/cclint/pkg/finding"
)

// lattice is the pointer status at a program point. The zero value,
// latticeValid, is the implicit complement: a pointer in pointerVars but
// in none of the negative sets is VALID.
type lattice int

const (
	latticeValid lattice = iota
	latticeUninitialized
	latticeNullValued
	latticeFreed
)

// Checker is the memory-safety checker. It carries summary state across
// the functions of a single translation unit; Run resets that state at
// the start of every call, so a Checker is safe to reuse across
// sequential analyses of different translation units (but not
// concurrently — see package runner).
type Checker struct {
	globalUninitialized   map[string]bool
	globalArraySizes      map[string]int64
	leakyFunctions        map[string]bool
	unsafePointerReturners map[string]bool
}

// New constructs a memory-safety Checker.
func New() *Checker { return &Checker{} }

// Name implements checker.Checker.
func (c *Checker) Name() string { return "memory" }

func (c *Checker) reset() {
	c.globalUninitialized = make(map[string]bool)
	c.globalArraySizes = make(map[string]int64)
	c.leakyFunctions = make(map[string]bool)
	c.unsafePointerReturners = make(map[string]bool)
}

// Run implements checker.Checker: a file-scope discovery pass followed by
// a per-function flow-sensitive walk.
func (c *Checker) Run(ctx *checker.AnalysisContext) ([]finding.Finding, error) {
	c.reset()

	var out []finding.Finding
	root := ctx.TU.Cursor()
	if root == nil {
		return out, nil
	}

	for _, decl := range root.Children() {
		loc := cursor.LocationOf(decl)
		if loc.File != ctx.SourcePath {
			continue
		}
		switch decl.Kind() {
		case cursor.KindVarDecl:
			if isPointerType(decl) && !decl.HasInitializer() {
				c.globalUninitialized[decl.Spelling()] = true
				c.emit(&out, finding.SeverityWarning, "pointer may be uninitialized", loc)
			} else if size, ok := constantArraySize(decl); ok {
				c.globalArraySizes[decl.Spelling()] = size
			}
		case cursor.KindFunctionDecl:
			out = append(out, c.analyzeFunction(decl)...)
		}
	}

	return out, nil
}

func (c *Checker) emit(out *[]finding.Finding, severity finding.Severity, msg string, loc cursor.Location) {
	f, err := finding.New(finding.CategoryMemory, severity, msg, loc.File, loc.Line)
	if err != nil {
		return
	}
	if loc.HasColumn {
		f = f.WithColumn(loc.Column)
	}
	*out = append(*out, f)
}

// funcState is the per-function flow-sensitive state described in spec
// §3/§4.D: the pointer lattice, auxiliary array-size and allocation
// bookkeeping, and the per-kind dedup sets.
type funcState struct {
	pointerVars map[string]bool
	uninit      map[string]bool
	nullv       map[string]bool
	freed       map[string]bool
	arraySizes  map[string]int64
	allocations int
	frees       int
	returnsUninit bool
	dedup       map[string]map[string]bool
}

func newFuncState(globalArraySizes map[string]int64) *funcState {
	arr := make(map[string]int64, len(globalArraySizes))
	for k, v := range globalArraySizes {
		arr[k] = v
	}
	return &funcState{
		pointerVars: make(map[string]bool),
		uninit:      make(map[string]bool),
		nullv:       make(map[string]bool),
		freed:       make(map[string]bool),
		arraySizes:  arr,
		dedup:       make(map[string]map[string]bool),
	}
}

func (s *funcState) setState(name string, st lattice) {
	delete(s.uninit, name)
	delete(s.nullv, name)
	delete(s.freed, name)
	switch st {
	case latticeUninitialized:
		s.uninit[name] = true
	case latticeNullValued:
		s.nullv[name] = true
	case latticeFreed:
		s.freed[name] = true
	case latticeValid:
	}
}

// dedupOnce reports whether (kind, identifier, location) has not yet been
// reported for this function, recording it if so. Guarantees at most one
// finding per kind per location per identifier per function.
func (s *funcState) dedupOnce(kind, name string, loc cursor.Location) bool {
	col := 0
	if loc.HasColumn {
		col = loc.Column
	}
	key := fmt.Sprintf("%s:%d:%d", name, loc.Line, col)
	m := s.dedup[kind]
	if m == nil {
		m = make(map[string]bool)
		s.dedup[kind] = m
	}
	if m[key] {
		return false
	}
	m[key] = true
	return true
}

func (c *Checker) analyzeFunction(fn cursor.Cursor) []finding.Finding {
	st := newFuncState(c.globalArraySizes)

	var body cursor.Cursor
	for _, kid := range fn.Children() {
		if kid.Kind() == cursor.KindParmDecl && isPointerType(kid) {
			st.pointerVars[kid.Spelling()] = true
		}
		if kid.Kind() == cursor.KindCompoundStmt {
			body = kid
		}
	}

	var out []finding.Finding
	if body != nil {
		c.walk(body, st, map[string]bool{}, &out)
	}

	if st.allocations > st.frees {
		c.leakyFunctions[fn.Spelling()] = true
		loc := cursor.LocationOf(fn)
		c.emit(&out, finding.SeverityWarning,
			fmt.Sprintf("possible leak: %d allocations vs %d frees", st.allocations, st.frees), loc)
	}

	if st.returnsUninit {
		c.unsafePointerReturners[fn.Spelling()] = true
	}

	return out
}

// walk is the single guarded recursive descent used for both statements
// and expressions. guards is the set of identifiers statically known to
// be non-null in the current lexical subtree.
func (c *Checker) walk(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case cursor.KindFunctionDecl:
		// Nested function declarations are not descended.
		return
	case cursor.KindVarDecl:
		c.handleVarDecl(n, st, guards, out)
	case cursor.KindBinaryOperator:
		c.handleBinaryOperator(n, st, guards, out)
	case cursor.KindCallExpr:
		c.handleCall(n, st, guards, out)
	case cursor.KindUnaryOperator:
		c.handleUnary(n, st, guards, out)
	case cursor.KindMemberRefExpr:
		c.handleMember(n, st, guards, out)
	case cursor.KindArraySubscriptExpr:
		c.handleSubscript(n, st, guards, out)
	case cursor.KindReturnStmt:
		c.handleReturn(n, st, guards, out)
	case cursor.KindIfStmt:
		c.handleIf(n, st, guards, out)
	case cursor.KindWhileStmt:
		c.handleLoopHeader(n, st, guards, out, 1)
	case cursor.KindForStmt:
		c.handleLoopHeader(n, st, guards, out, 3)
	default:
		for _, kid := range n.Children() {
			c.walk(kid, st, guards, out)
		}
	}
}

func (c *Checker) handleVarDecl(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	name := n.Spelling()
	if isPointerType(n) {
		st.pointerVars[name] = true
		switch {
		case !n.HasInitializer():
			st.setState(name, latticeUninitialized)
		case endsInNullOrZero(n.Tokens()):
			st.setState(name, latticeNullValued)
		default:
			st.setState(name, latticeValid)
		}
	} else if size, ok := constantArraySize(n); ok {
		st.arraySizes[name] = size
	}
	for _, kid := range n.Children() {
		c.walk(kid, st, guards, out)
	}
}

func (c *Checker) handleBinaryOperator(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	if !cursor.ContainsToken(n.Tokens(), "=") {
		for _, kid := range n.Children() {
			c.walk(kid, st, guards, out)
		}
		return
	}

	kids := n.Children()
	if len(kids) < 2 {
		return
	}
	target, rhs := kids[0], kids[1]

	if target.Kind() == cursor.KindDeclRefExpr && st.pointerVars[target.Spelling()] {
		st.setState(target.Spelling(), c.classifyAssignmentRHS(rhs))
	} else {
		// A plain "p = ..." assignment defines p rather than using its
		// current value, so only walk the target when it isn't that
		// simple shape (e.g. "*p = ...", "p->f = ...", "a[i] = ...",
		// all of which read p's current value to compute the address).
		c.walk(target, st, guards, out)
	}

	c.walk(rhs, st, guards, out)
}

func (c *Checker) classifyAssignmentRHS(rhs cursor.Cursor) lattice {
	if rhs.Kind() == cursor.KindCallExpr {
		callee := calleeName(rhs)
		switch callee {
		case "malloc", "calloc", "realloc":
			return latticeValid
		}
		if c.unsafePointerReturners[callee] {
			return latticeUninitialized
		}
	}

	toks := rhs.Tokens()
	if len(toks) > 0 && toks[0] == "&" {
		return latticeValid
	}
	if cursor.ContainsToken(toks, "NULL") {
		return latticeNullValued
	}
	if len(toks) == 1 && (toks[0] == "0" || toks[0] == "nullptr") {
		return latticeNullValued
	}
	return latticeValid
}

func (c *Checker) handleCall(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	switch calleeName(n) {
	case "malloc", "calloc", "realloc":
		st.allocations++
		for _, arg := range n.Children() {
			c.walk(arg, st, guards, out)
		}
		return
	case "free":
		c.handleFree(n, st, guards, out)
		return
	}

	for _, arg := range n.Children() {
		if ref := cursor.FirstDeclRef(arg); ref != nil && st.pointerVars[ref.Spelling()] {
			c.pointerUseCheck(ref.Spelling(), n, st, guards, out, false)
		}
		c.walk(arg, st, guards, out)
	}
}

func (c *Checker) handleFree(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	args := n.Children()
	if len(args) == 0 {
		st.frees++
		return
	}
	ref := cursor.FirstDeclRef(args[0])
	if ref == nil {
		st.frees++
		return
	}

	name := ref.Spelling()
	loc := cursor.LocationOf(n)

	if st.freed[name] {
		if st.dedupOnce("double_free", name, loc) {
			c.emit(out, finding.SeverityError, "possible double free", loc)
		}
	}

	c.pointerUseCheck(name, n, st, guards, out, true)

	delete(st.uninit, name)
	st.freed[name] = true
	st.nullv[name] = true
	st.frees++
}

// pointerUseCheck is the shared use-site check invoked from unary
// dereference, member access, array subscript, call arguments and return
// statements.
func (c *Checker) pointerUseCheck(name string, n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding, isFreeArg bool) {
	loc := cursor.LocationOf(n)
	switch {
	case st.freed[name] && !isFreeArg:
		if st.dedupOnce("use_after_free", name, loc) {
			c.emit(out, finding.SeverityError, "use-after-free", loc)
		}
	case st.nullv[name] && !guards[name] && !st.freed[name]:
		if st.dedupOnce("null_deref", name, loc) {
			c.emit(out, finding.SeverityError, "null dereference", loc)
		}
	case st.uninit[name]:
		if st.dedupOnce("uninit_use", name, loc) {
			c.emit(out, finding.SeverityError, "uninitialized pointer use", loc)
		}
		delete(st.uninit, name)
	}
}

func (c *Checker) handleUnary(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	toks := n.Tokens()
	if len(toks) > 0 && toks[0] == "*" && len(n.Children()) > 0 {
		if base := cursor.FirstDeclRef(n.Children()[0]); base != nil && st.pointerVars[base.Spelling()] {
			c.pointerUseCheck(base.Spelling(), n, st, guards, out, false)
		}
	}
	for _, kid := range n.Children() {
		c.walk(kid, st, guards, out)
	}
}

func (c *Checker) handleMember(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	if len(n.Children()) > 0 {
		if base := cursor.FirstDeclRef(n.Children()[0]); base != nil && st.pointerVars[base.Spelling()] {
			c.pointerUseCheck(base.Spelling(), n, st, guards, out, false)
		}
	}
	for _, kid := range n.Children() {
		c.walk(kid, st, guards, out)
	}
}

func (c *Checker) handleSubscript(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	kids := n.Children()
	var baseName string
	if len(kids) > 0 {
		if base := cursor.FirstDeclRef(kids[0]); base != nil {
			baseName = base.Spelling()
			if st.pointerVars[baseName] {
				c.pointerUseCheck(baseName, n, st, guards, out, false)
			}
		}
	}

	if len(kids) > 1 && baseName != "" {
		if size, ok := st.arraySizes[baseName]; ok {
			if idx, ok := cursor.ConstantInt(kids[1]); ok && (idx < 0 || idx >= size) {
				c.emit(out, finding.SeverityError, "out-of-bounds access", cursor.LocationOf(n))
			}
		}
	}

	for _, kid := range kids {
		c.walk(kid, st, guards, out)
	}
}

func (c *Checker) handleReturn(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	for _, kid := range n.Children() {
		if ref := cursor.FirstDeclRef(kid); ref != nil && st.pointerVars[ref.Spelling()] {
			name := ref.Spelling()
			wasUninit := st.uninit[name] || c.globalUninitialized[name]
			c.pointerUseCheck(name, n, st, guards, out, false)
			if wasUninit {
				st.returnsUninit = true
			}
		}
		c.walk(kid, st, guards, out)
	}
}

func (c *Checker) handleIf(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding) {
	kids := n.Children()
	if len(kids) < 2 {
		return
	}
	cond, then := kids[0], kids[1]
	var elseBranch cursor.Cursor
	if len(kids) >= 3 {
		elseBranch = kids[2]
	}

	c.walk(cond, st, guards, out)

	extension := thenGuardExtension(cond.Tokens(), st.pointerVars)
	thenGuards := unionGuards(guards, extension)
	c.walk(then, st, thenGuards, out)

	if elseBranch != nil {
		c.walk(elseBranch, st, guards, out)
	}
}

// handleLoopHeader walks a while/for's clause cursors (the condition
// alone for while, init/cond/inc for for) and its body with the current
// guard set: the memory checker does not special-case loop guards.
func (c *Checker) handleLoopHeader(n cursor.Cursor, st *funcState, guards map[string]bool, out *[]finding.Finding, clauseCount int) {
	kids := n.Children()
	for i := 0; i < clauseCount && i < len(kids); i++ {
		c.walk(kids[i], st, guards, out)
	}
	if len(kids) > clauseCount {
		c.walk(kids[clauseCount], st, guards, out)
	}
}

func thenGuardExtension(condToks []string, pointerVars map[string]bool) map[string]bool {
	ext := make(map[string]bool)
	if cursor.ContainsToken(condToks, "||") {
		return ext
	}
	for _, part := range splitOnToken(condToks, "&&") {
		switch {
		case len(part) == 1 && pointerVars[part[0]]:
			ext[part[0]] = true
		case len(part) == 3 && part[1] == "!=" && isNullLiteral(part[2]) && pointerVars[part[0]]:
			ext[part[0]] = true
		case len(part) == 3 && part[1] == "!=" && isNullLiteral(part[0]) && pointerVars[part[2]]:
			ext[part[2]] = true
		}
	}
	return ext
}

func unionGuards(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func splitOnToken(toks []string, sep string) [][]string {
	var parts [][]string
	var cur []string
	for _, t := range toks {
		if t == sep {
			parts = append(parts, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	parts = append(parts, cur)
	return parts
}

func isNullLiteral(tok string) bool {
	return tok == "NULL" || tok == "0" || tok == "nullptr"
}

func endsInNullOrZero(toks []string) bool {
	if len(toks) == 0 {
		return false
	}
	last := toks[len(toks)-1]
	return last == "NULL" || last == "0" || last == "nullptr"
}

func isPointerType(c cursor.Cursor) bool {
	return c.Type().Kind == cursor.TypePointer
}

func constantArraySize(c cursor.Cursor) (int64, bool) {
	t := c.Type()
	if t.Kind == cursor.TypeConstantArray && t.HasArraySize {
		return t.ArraySize, true
	}
	return 0, false
}

func calleeName(n cursor.Cursor) string {
	if ref := n.ReferencedDecl(); ref != nil {
		return ref.Spelling()
	}
	return n.Spelling()
}

var _ = checker.Checker(New())
