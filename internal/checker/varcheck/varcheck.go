// Package varcheck implements the variable-usage checker: file-scope
// declarations left without an initializer, and per-function use of a
// local before any assignment reaches it.
package varcheck

import (
	"fmt"

	"github.com/kdmitry/cclint/internal/checker"
	"github.com/kdmitry/cclint/pkg/cursor"
	"github.com/kdmitry/cclint/pkg/finding"
)

// Checker is the variable-usage checker. It carries no state across
// functions or translation units; Run is safe to call repeatedly and
// concurrently for distinct contexts, since each call constructs its own
// per-function bookkeeping internally.
type Checker struct{}

// New constructs a variable-usage Checker.
func New() *Checker { return &Checker{} }

// Name implements checker.Checker.
func (c *Checker) Name() string { return "variable" }

// Run implements checker.Checker.
func (c *Checker) Run(ctx *checker.AnalysisContext) ([]finding.Finding, error) {
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
			if !decl.IsExternStorage() && !decl.HasInitializer() {
				c.emit(&out, fmt.Sprintf("variable %q declared without an initializer", decl.Spelling()), loc)
			}
		case cursor.KindFunctionDecl:
			out = append(out, c.analyzeFunction(decl)...)
		}
	}

	return out, nil
}

func (c *Checker) emit(out *[]finding.Finding, msg string, loc cursor.Location) {
	f, err := finding.New(finding.CategoryVariable, finding.SeverityWarning, msg, loc.File, loc.Line)
	if err != nil {
		return
	}
	if loc.HasColumn {
		f = f.WithColumn(loc.Column)
	}
	*out = append(*out, f)
}

// funcScope is the per-function bookkeeping: the set of local names known
// to have received a value, and a dedup set so a given unassigned
// identifier is reported at most once per function.
type funcScope struct {
	assigned map[string]bool
	reported map[string]bool
}

func newFuncScope() *funcScope {
	return &funcScope{assigned: make(map[string]bool), reported: make(map[string]bool)}
}

func (c *Checker) analyzeFunction(fn cursor.Cursor) []finding.Finding {
	scope := newFuncScope()

	var body cursor.Cursor
	for _, kid := range fn.Children() {
		if kid.Kind() == cursor.KindParmDecl {
			scope.assigned[kid.Spelling()] = true
		}
		if kid.Kind() == cursor.KindCompoundStmt {
			body = kid
		}
	}

	var out []finding.Finding
	if body != nil {
		c.walk(body, scope, &out)
	}
	return out
}

// walk visits nodes in document order, the order spec.md's "used before
// assignment" rule is defined relative to.
func (c *Checker) walk(n cursor.Cursor, scope *funcScope, out *[]finding.Finding) {
	if n == nil {
		return
	}

	switch n.Kind() {
	case cursor.KindFunctionDecl:
		return

	case cursor.KindVarDecl:
		if n.HasInitializer() {
			for _, kid := range n.Children() {
				c.walk(kid, scope, out)
			}
			scope.assigned[n.Spelling()] = true
		}
		return

	case cursor.KindBinaryOperator:
		toks := n.Tokens()
		if cursor.ContainsToken(toks, "=") {
			kids := n.Children()
			if len(kids) >= 2 {
				c.walk(kids[1], scope, out)
				if target := kids[0]; target.Kind() == cursor.KindDeclRefExpr {
					scope.assigned[target.Spelling()] = true
					return
				}
				c.walk(kids[0], scope, out)
				return
			}
		}
		for _, kid := range n.Children() {
			c.walk(kid, scope, out)
		}
		return

	case cursor.KindDeclRefExpr:
		name := n.Spelling()
		if ref := n.ReferencedDecl(); ref != nil && ref.Kind() == cursor.KindVarDecl && !scope.assigned[name] {
			if !scope.reported[name] {
				scope.reported[name] = true
				loc := cursor.LocationOf(n)
				c.emit(out, fmt.Sprintf("%q used before assignment", name), loc)
			}
		}
		return

	default:
		for _, kid := range n.Children() {
			c.walk(kid, scope, out)
		}
	}
}

var _ = checker.Checker(New())
