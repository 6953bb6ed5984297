// Package numcheck implements the numeric and control-flow checker:
// division by a literal zero, loop-termination heuristics for while/for
// statements, and unreachable code following an unconditional
// return/break/continue.
package numcheck

import (
	"regexp"
	"strings"

	"github.com/kdmitry/cclint/internal/checker"
	"github.com/kdmitry/cclint/pkg/cursor"
	"github.com/kdmitry/cclint/pkg/finding"
)

// Checker is the numeric/control-flow checker. Stateless across calls.
type Checker struct{}

// New constructs a numeric/control-flow Checker.
func New() *Checker { return &Checker{} }

// Name implements checker.Checker.
func (c *Checker) Name() string { return "numeric" }

// Run implements checker.Checker.
func (c *Checker) Run(ctx *checker.AnalysisContext) ([]finding.Finding, error) {
	var out []finding.Finding
	root := ctx.TU.Cursor()
	if root == nil {
		return out, nil
	}
	for _, decl := range root.Children() {
		if decl.Kind() != cursor.KindFunctionDecl {
			continue
		}
		if cursor.LocationOf(decl).File != ctx.SourcePath {
			continue
		}
		for _, kid := range decl.Children() {
			if kid.Kind() == cursor.KindCompoundStmt {
				c.walkBlock(kid, &out)
			}
		}
	}
	return out, nil
}

func (c *Checker) emit(out *[]finding.Finding, severity finding.Severity, category finding.Category, msg string, loc cursor.Location) {
	f, err := finding.New(category, severity, msg, loc.File, loc.Line)
	if err != nil {
		return
	}
	if loc.HasColumn {
		f = f.WithColumn(loc.Column)
	}
	*out = append(*out, f)
}

// walkBlock handles one compound statement's direct statement list. The
// unreachable-code scan and the division/loop/recursion scan are two
// independent passes over the same list, mirroring the engine's separate
// per-check traversals: an unreachable-code report stops only the
// unreachable-code scan, never the rest of the analysis.
func (c *Checker) walkBlock(block cursor.Cursor, out *[]finding.Finding) {
	stmts := block.Children()

	c.checkUnreachable(stmts, out)

	loopBlocked := false
	for _, stmt := range stmts {
		switch stmt.Kind() {
		case cursor.KindWhileStmt, cursor.KindForStmt:
			infinite := loopIsDefinitelyInfinite(stmt)
			if infinite && !loopBlocked {
				c.emit(out, finding.SeverityWarning, finding.CategoryControlFlow, "loop never terminates", cursor.LocationOf(stmt))
			}
			if infinite {
				loopBlocked = true
			}
			c.walkLoopChildren(stmt, out)
		case cursor.KindReturnStmt, cursor.KindBreakStmt:
			loopBlocked = true
			c.walkStmt(stmt, out)
		default:
			c.walkStmt(stmt, out)
		}
	}
}

// checkUnreachable emits at most one "unreachable code" finding per
// compound statement: once a sibling is return/break/continue, the next
// sibling (if any) is reported and the scan stops.
func (c *Checker) checkUnreachable(stmts []cursor.Cursor, out *[]finding.Finding) {
	terminal := false
	for _, stmt := range stmts {
		if terminal {
			c.emit(out, finding.SeverityWarning, finding.CategoryControlFlow, "unreachable code", cursor.LocationOf(stmt))
			return
		}
		switch stmt.Kind() {
		case cursor.KindReturnStmt, cursor.KindBreakStmt, cursor.KindContinueStmt:
			terminal = true
		}
	}
}

func (c *Checker) walkStmt(n cursor.Cursor, out *[]finding.Finding) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case cursor.KindBinaryOperator:
		c.checkDivision(n, out)
		for _, kid := range n.Children() {
			c.walkStmt(kid, out)
		}
	case cursor.KindCompoundStmt:
		c.walkBlock(n, out)
	case cursor.KindWhileStmt, cursor.KindForStmt:
		// Reached other than as a direct statement of an enclosing
		// compound block (e.g. an unbraced if-body): there is no sibling
		// list to test reachability against, so it is simply reachable.
		if loopIsDefinitelyInfinite(n) {
			c.emit(out, finding.SeverityWarning, finding.CategoryControlFlow, "loop never terminates", cursor.LocationOf(n))
		}
		c.walkLoopChildren(n, out)
	default:
		for _, kid := range n.Children() {
			c.walkStmt(kid, out)
		}
	}
}

func (c *Checker) walkLoopChildren(loop cursor.Cursor, out *[]finding.Finding) {
	for _, kid := range loop.Children() {
		c.walkStmt(kid, out)
	}
}

// checkDivision reports a literal-zero divisor, e.g. "x / 0" or
// "x % 0". It scans the flattened token stream for a "/" or "%" token
// immediately followed by a literal "0".
func (c *Checker) checkDivision(n cursor.Cursor, out *[]finding.Finding) {
	toks := n.Tokens()
	for i := 0; i+1 < len(toks); i++ {
		if (toks[i] == "/" || toks[i] == "%") && toks[i+1] == "0" {
			c.emit(out, finding.SeverityError, finding.CategoryNumeric, "division by zero", cursor.LocationOf(n))
			return
		}
	}
}

// loopIsDefinitelyInfinite applies spec's definitely-infinite rules to a
// while/for statement's condition (and, for a for-loop, its increment
// direction), without regard to reachability; reachability is tracked
// separately by the caller.
func loopIsDefinitelyInfinite(n cursor.Cursor) bool {
	switch n.Kind() {
	case cursor.KindWhileStmt:
		kids := n.Children()
		if len(kids) < 2 {
			return false
		}
		cond, body := kids[0], kids[1]
		condText := joinNoSep(leafTokens(cond))

		switch condText {
		case "1", "(1)", "true", "(true)":
			return true
		}

		if v, ok := extractConditionVariable(condText); ok {
			return !variableModified(body, v)
		}

		if v, _, ok := relationalCondition(condText); ok {
			return !variableModified(body, v)
		}
		return false

	case cursor.KindForStmt:
		kids := n.Children()
		if len(kids) < 4 {
			return false
		}
		cond, inc, body := kids[1], kids[2], kids[3]
		_ = body
		condText := joinNoSep(leafTokens(cond))

		if condText == "" {
			return true
		}
		if condText == "1" || condText == "true" {
			return true
		}
		if strings.Contains(condText, "!=") || strings.Contains(condText, "==") {
			return true
		}

		if v, op, ok := relationalCondition(condText); ok {
			switch analyzeIncrement(v, inc) {
			case "none":
				return true
			case "up":
				return op == ">" || op == ">="
			case "down":
				return op == "<" || op == "<="
			}
		}
		return false
	}
	return false
}

var (
	leadingIdentRe = regexp.MustCompile(`^\(?\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)?$`)
	comparisonRe   = regexp.MustCompile(`[<>=]`)
	relationalRe   = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(<=|>=|<|>)\s*(.+)$`)
)

// extractConditionVariable recognizes a condition that is nothing but a
// single identifier (optionally parenthesized), with no comparison
// operator anywhere in the text.
func extractConditionVariable(conditionText string) (string, bool) {
	text := strings.TrimSpace(conditionText)
	if text == "" {
		return "", false
	}
	m := leadingIdentRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if comparisonRe.MatchString(text) {
		return "", false
	}
	if strings.Contains(text, "!=") && !strings.Contains(text, "0") {
		return "", false
	}
	return m[1], true
}

// relationalCondition recognizes "var OP rhs" with OP in {<, <=, >, >=}.
func relationalCondition(conditionText string) (varName, op string, ok bool) {
	m := relationalRe.FindStringSubmatch(conditionText)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// variableModified reports whether varName is modified by the loop body
// before any "continue", per the body-modification oracle: ++v/v++,
// --v/v--, a compound assignment whose right-hand side isn't a zero
// literal, or a plain assignment whose right-hand side isn't v/(v).
func variableModified(body cursor.Cursor, varName string) bool {
	text := bodyText(body)
	if text == "" {
		return false
	}
	continueIdx := strings.Index(text, "continue")
	qv := regexp.QuoteMeta(varName)

	incRe := regexp.MustCompile(`(\+\+\s*` + qv + `|` + qv + `\s*\+\+)`)
	if loc := incRe.FindStringIndex(text); loc != nil && (continueIdx == -1 || loc[0] < continueIdx) {
		return true
	}

	decRe := regexp.MustCompile(`(--\s*` + qv + `|` + qv + `\s*--)`)
	if loc := decRe.FindStringIndex(text); loc != nil && (continueIdx == -1 || loc[0] < continueIdx) {
		return true
	}

	compoundRe := regexp.MustCompile(qv + `\s*([+\-*/]=)\s*([^;]+)`)
	for _, m := range compoundRe.FindAllStringSubmatchIndex(text, -1) {
		if continueIdx != -1 && m[0] > continueIdx {
			continue
		}
		rhs := strings.TrimSpace(text[m[4]:m[5]])
		if isZeroLiteral(rhs) {
			continue
		}
		return true
	}

	assignRe := regexp.MustCompile(qv + `\s*=\s*([^;]+)`)
	for _, m := range assignRe.FindAllStringSubmatchIndex(text, -1) {
		if continueIdx != -1 && m[0] > continueIdx {
			continue
		}
		rhs := strings.TrimSpace(strings.SplitN(text[m[2]:m[3]], ";", 2)[0])
		if rhs == varName || rhs == "("+varName+")" {
			continue
		}
		return true
	}

	return false
}

func isZeroLiteral(s string) bool {
	switch s {
	case "0", "0.0", "0f", "0F":
		return true
	}
	return false
}

// analyzeIncrement classifies a for-loop's increment clause for varName
// as "up", "down", or "none" (no recognizable effect on varName).
func analyzeIncrement(varName string, inc cursor.Cursor) string {
	text := joinNoSep(leafTokens(inc))
	if text == "" {
		return "none"
	}
	qv := regexp.QuoteMeta(varName)

	incRe := regexp.MustCompile(`(\+\+\s*` + qv + `|` + qv + `\s*\+\+)`)
	if incRe.MatchString(text) {
		return "up"
	}
	decRe := regexp.MustCompile(`(--\s*` + qv + `|` + qv + `\s*--)`)
	if decRe.MatchString(text) {
		return "down"
	}

	if m := regexp.MustCompile(qv + `\s*([+\-]=)\s*([^;]+)`).FindStringSubmatch(text); m != nil {
		op, rhs := m[1], strings.TrimSpace(m[2])
		negative := strings.HasPrefix(rhs, "-")
		if op == "+=" {
			if negative {
				return "down"
			}
			return "up"
		}
		if negative {
			return "up"
		}
		return "down"
	}

	if m := regexp.MustCompile(qv + `\s*=\s*` + qv + `\s*([+\-])\s*([^;]+)`).FindStringSubmatch(text); m != nil {
		sign, rhs := m[1], strings.TrimSpace(m[2])
		negative := strings.HasPrefix(rhs, "-")
		if sign == "+" {
			if negative {
				return "down"
			}
			return "up"
		}
		if negative {
			return "up"
		}
		return "down"
	}

	return "none"
}

// leafTokens flattens a subtree's tokens in document order, taking a
// node's own Tokens() only when it has no children: a container node's
// tokens are already covered by its descendants (the production adapter
// tokenizes a cursor's full source extent, so a container's own token
// list would otherwise duplicate its children's).
func leafTokens(n cursor.Cursor) []string {
	if n == nil {
		return nil
	}
	kids := n.Children()
	if len(kids) == 0 {
		return n.Tokens()
	}
	var out []string
	for _, k := range kids {
		out = append(out, leafTokens(k)...)
	}
	return out
}

func joinNoSep(toks []string) string { return strings.Join(toks, "") }

func bodyText(body cursor.Cursor) string {
	return strings.Join(leafTokens(body), " ")
}

var _ = checker.Checker(New())
