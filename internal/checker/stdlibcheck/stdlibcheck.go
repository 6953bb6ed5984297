// Package stdlibcheck implements the standard-library misuse checker:
// calls to well-known libc functions made without the header that
// declares them included, and printf/scanf format-string arity and
// shape mismatches against their variadic arguments.
package stdlibcheck

import (
	"fmt"
	"strings"

	"github.com/kdmitry/cclint/internal/checker"
	"github.com/kdmitry/cclint/pkg/cursor"
	"github.com/kdmitry/cclint/pkg/finding"
)

// requiredHeader maps the fixed set of commonly-misused libc functions to
// the header that must be included for their use to be well-formed.
var requiredHeader = map[string]string{
	"printf":   "stdio.h",
	"scanf":    "stdio.h",
	"fprintf":  "stdio.h",
	"sprintf":  "stdio.h",
	"snprintf": "stdio.h",
	"malloc":   "stdlib.h",
	"calloc":   "stdlib.h",
	"realloc":  "stdlib.h",
	"free":     "stdlib.h",
	"memcpy":   "string.h",
	"memset":   "string.h",
	"strlen":   "string.h",
}

// formatArgIndex is the index of the format-string argument for the two
// functions whose format-arity and scanf-address shape is checked.
var formatArgIndex = map[string]int{
	"printf": 0,
	"scanf":  0,
}

// Checker is the standard-library checker. Stateless across calls.
type Checker struct{}

// New constructs a standard-library Checker.
func New() *Checker { return &Checker{} }

// Name implements checker.Checker.
func (c *Checker) Name() string { return "stdlib" }

// Run implements checker.Checker.
func (c *Checker) Run(ctx *checker.AnalysisContext) ([]finding.Finding, error) {
	var out []finding.Finding
	root := ctx.TU.Cursor()
	if root == nil {
		return out, nil
	}

	includes := cursor.IncludesOf(ctx.TU)

	for _, decl := range root.Children() {
		if decl.Kind() != cursor.KindFunctionDecl {
			continue
		}
		if cursor.LocationOf(decl).File != ctx.SourcePath {
			continue
		}
		for _, kid := range decl.Children() {
			if kid.Kind() == cursor.KindCompoundStmt {
				c.walk(kid, includes, &out)
			}
		}
	}

	return out, nil
}

func (c *Checker) emit(out *[]finding.Finding, severity finding.Severity, msg string, loc cursor.Location) {
	f, err := finding.New(finding.CategoryStdlib, severity, msg, loc.File, loc.Line)
	if err != nil {
		return
	}
	if loc.HasColumn {
		f = f.WithColumn(loc.Column)
	}
	*out = append(*out, f)
}

func (c *Checker) walk(n cursor.Cursor, includes map[string]bool, out *[]finding.Finding) {
	if n == nil {
		return
	}
	if n.Kind() == cursor.KindCallExpr {
		c.checkCall(n, includes, out)
	}
	for _, kid := range n.Children() {
		c.walk(kid, includes, out)
	}
}

func (c *Checker) checkCall(n cursor.Cursor, includes map[string]bool, out *[]finding.Finding) {
	name := calleeName(n)
	loc := cursor.LocationOf(n)

	if header, known := requiredHeader[name]; known && !includes[header] {
		c.emit(out, finding.SeverityWarning,
			fmt.Sprintf("call to %q requires #include <%s>", name, header), loc)
	}

	if idx, ok := formatArgIndex[name]; ok {
		c.checkFormat(name, idx, n, loc, out)
	}
}

func (c *Checker) checkFormat(name string, fmtArgIdx int, n cursor.Cursor, loc cursor.Location, out *[]finding.Finding) {
	args := n.Children()
	if fmtArgIdx >= len(args) {
		return
	}
	spec, ok := stringLiteral(args[fmtArgIdx])
	if !ok {
		return
	}

	specifiers := scanSpecifiers(spec)
	variadic := args[fmtArgIdx+1:]

	if len(specifiers) != len(variadic) {
		c.emit(out, finding.SeverityError,
			fmt.Sprintf("%q expects %d argument(s) for its format string but %d were given",
				name, len(specifiers), len(variadic)), loc)
		return
	}

	if name == "scanf" {
		for i, arg := range variadic {
			if specifiers[i] == "%s" {
				continue // %s takes a buffer identifier, already address-like
			}
			toks := arg.Tokens()
			if len(toks) == 0 || toks[0] != "&" {
				c.emit(out, finding.SeverityError,
					fmt.Sprintf("%q argument %d should be a pointer (missing '&'?)", name, i+1), loc)
				return
			}
		}
	}
}

// scanSpecifiers extracts the ordered list of conversion specifiers
// ("%d", "%s", ...) from a format string, skipping "%%" escapes.
func scanSpecifiers(spec string) []string {
	var out []string
	runes := []rune(spec)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '%' {
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && !isConversionEnd(runes[j]) {
			j++
		}
		if j < len(runes) {
			out = append(out, "%"+string(runes[j]))
			i = j
		}
	}
	return out
}

func isConversionEnd(r rune) bool {
	return strings.ContainsRune("diouxXeEfFgGaAcspn%", r)
}

// stringLiteral returns the decoded contents of a string-literal cursor,
// recognizing the common shape where Tokens() holds a single quoted
// token.
func stringLiteral(c cursor.Cursor) (string, bool) {
	toks := c.Tokens()
	if len(toks) != 1 {
		return "", false
	}
	tok := toks[0]
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", false
	}
	return tok[1 : len(tok)-1], true
}

func calleeName(n cursor.Cursor) string {
	if ref := n.ReferencedDecl(); ref != nil {
		return ref.Spelling()
	}
	return n.Spelling()
}

var _ = checker.Checker(New())
