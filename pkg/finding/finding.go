// Package finding provides the immutable diagnostic value types shared by
// every checker: Finding, Suggestion and Report.
package finding

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kdmitry/cclint/internal/errs"
)

// Severity ranks a Finding's importance. The zero value is SeverityError.
type Severity int

// Closed set of severities.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOther
)

// String renders the severity the way reports print it.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "other"
	}
}

// rank orders severities for sorting: error < warning < info < other.
func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// Category classifies the defect class a Finding belongs to.
type Category string

// Closed set of categories.
const (
	CategoryMemory         Category = "memory"
	CategoryVariable       Category = "variable"
	CategoryStdlib         Category = "stdlib"
	CategoryNumeric        Category = "numeric"
	CategoryControlFlow    Category = "control-flow"
	CategoryInfrastructure Category = "infrastructure"
)

var validCategories = map[Category]bool{
	CategoryMemory:         true,
	CategoryVariable:       true,
	CategoryStdlib:         true,
	CategoryNumeric:        true,
	CategoryControlFlow:    true,
	CategoryInfrastructure: true,
}

// Suggestion is an optional textual remediation attached to a Finding.
type Suggestion struct {
	Title  string
	Detail string // optional, empty when there is none
}

// Finding is a single, immutable diagnostic record.
type Finding struct {
	category   Category
	severity   Severity
	message    string
	file       string
	line       int
	column     int
	hasColumn  bool
	suggestion *Suggestion
}

// New constructs a Finding, validating severity and category against their
// closed sets and enforcing line >= 0 (line == 0 is reserved for
// infrastructure failures).
func New(category Category, severity Severity, message, file string, line int) (Finding, error) {
	if !validCategories[category] {
		return Finding{}, fmt.Errorf("%w: category %q", errs.ErrInvalidFinding, category)
	}
	switch severity {
	case SeverityError, SeverityWarning, SeverityInfo:
	default:
		return Finding{}, fmt.Errorf("%w: severity %q", errs.ErrInvalidFinding, severity)
	}
	if line < 0 {
		return Finding{}, fmt.Errorf("%w: negative line %d", errs.ErrInvalidFinding, line)
	}
	return Finding{
		category: category,
		severity: severity,
		message:  message,
		file:     file,
		line:     line,
	}, nil
}

// WithColumn attaches an optional column to the Finding, returning a copy.
func (f Finding) WithColumn(column int) Finding {
	f.column = column
	f.hasColumn = true
	return f
}

// WithSuggestion attaches an optional suggestion to the Finding, returning
// a copy.
func (f Finding) WithSuggestion(title, detail string) Finding {
	f.suggestion = &Suggestion{Title: title, Detail: detail}
	return f
}

// Category returns the finding's defect class.
func (f Finding) Category() Category { return f.category }

// Severity returns the finding's severity.
func (f Finding) Severity() Severity { return f.severity }

// Message returns the human-readable diagnostic sentence.
func (f Finding) Message() string { return f.message }

// File returns the source file path the finding applies to.
func (f Finding) File() string { return f.file }

// Line returns the 1-based source line, or 0 for infrastructure findings.
func (f Finding) Line() int { return f.line }

// Column returns the optional source column.
func (f Finding) Column() (column int, ok bool) { return f.column, f.hasColumn }

// Suggestion returns the optional remediation, or nil.
func (f Finding) Suggestion() *Suggestion {
	if f.suggestion == nil {
		return nil
	}
	cp := *f.suggestion
	return &cp
}

// dropSuggestion returns a copy of f with its suggestion cleared, used when
// Config.EnableSuggestions is false at emit time.
func (f Finding) dropSuggestion() Finding {
	f.suggestion = nil
	return f
}

func (f Finding) sortKey() (int, string, int, int) {
	col := f.column
	if !f.hasColumn {
		col = 0
	}
	return f.severity.rank(), f.file, f.line, col
}

// Report aggregates the findings produced for one source file.
type Report struct {
	sourcePath string
	findings   []Finding
}

// NewReport builds a Report, sorting findings by
// (severity_rank, file, line, column) as required by the runner. If
// enableSuggestions is false, every finding's suggestion is dropped
// before it is stored.
func NewReport(sourcePath string, findings []Finding, enableSuggestions bool) Report {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	if !enableSuggestions {
		for i := range sorted {
			sorted[i] = sorted[i].dropSuggestion()
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, fi, li, ci := sorted[i].sortKey()
		rj, fj, lj, cj := sorted[j].sortKey()
		if ri != rj {
			return ri < rj
		}
		if fi != fj {
			return fi < fj
		}
		if li != lj {
			return li < lj
		}
		return ci < cj
	})
	return Report{sourcePath: sourcePath, findings: sorted}
}

// SourcePath returns the path this report was produced for.
func (r Report) SourcePath() string { return r.sourcePath }

// Findings returns a defensive copy of the ordered findings.
func (r Report) Findings() []Finding {
	cp := make([]Finding, len(r.findings))
	copy(cp, r.findings)
	return cp
}

// HasErrors reports whether any finding has SeverityError.
func (r Report) HasErrors() bool {
	for _, f := range r.findings {
		if f.severity == SeverityError {
			return true
		}
	}
	return false
}

// SeverityHistogram returns a mapping of severity to count.
func (r Report) SeverityHistogram() map[Severity]int {
	hist := make(map[Severity]int)
	for _, f := range r.findings {
		hist[f.severity]++
	}
	return hist
}

// suggestionDict is the JSON shape of a Suggestion.
type suggestionDict struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// issueDict is the JSON shape of a single Finding within a Report.
type issueDict struct {
	Category   Category        `json:"category"`
	Severity   string          `json:"severity"`
	Message    string          `json:"message"`
	File       string          `json:"file"`
	Line       int             `json:"line"`
	Column     int             `json:"column,omitempty"`
	Suggestion *suggestionDict `json:"suggestion,omitempty"`
}

// reportDict is the JSON shape of a Report, returned by ToDict.
type reportDict struct {
	Source  string         `json:"source"`
	Issues  []issueDict    `json:"issues"`
	Summary map[string]int `json:"summary"`
}

// ToDict yields a stable, deterministic serialization:
// {source, issues[], summary}. issues[*] preserves insertion order, which
// equals the runner's sort order.
func (r Report) ToDict() map[string]any {
	d := r.toReportDict()
	raw, _ := json.Marshal(d)
	var generic map[string]any
	_ = json.Unmarshal(raw, &generic)
	return generic
}

func (r Report) toReportDict() reportDict {
	issues := make([]issueDict, len(r.findings))
	for i, f := range r.findings {
		issue := issueDict{
			Category: f.category,
			Severity: f.severity.String(),
			Message:  f.message,
			File:     f.file,
			Line:     f.line,
		}
		if col, ok := f.Column(); ok {
			issue.Column = col
		}
		if sug := f.Suggestion(); sug != nil {
			issue.Suggestion = &suggestionDict{Title: sug.Title, Detail: sug.Detail}
		}
		issues[i] = issue
	}
	summary := make(map[string]int)
	for sev, count := range r.SeverityHistogram() {
		summary[sev.String()] = count
	}
	return reportDict{Source: r.sourcePath, Issues: issues, Summary: summary}
}

// MarshalJSON implements json.Marshaler by delegating to ToDict's shape,
// so a []Report serializes deterministically with no bespoke call-site
// marshaling code.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toReportDict())
}

// FormatText yields a deterministic, line-oriented report: a source
// header, a statistics line, then one line per finding prefixed
// "[SEVERITY][category] path:line[:column]: message", with optional
// suggestion continuations indented.
func (r Report) FormatText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", r.sourcePath)

	hist := r.SeverityHistogram()
	fmt.Fprintf(&b, "%d error(s), %d warning(s), %d info(s)\n",
		hist[SeverityError], hist[SeverityWarning], hist[SeverityInfo])

	for _, f := range r.findings {
		loc := f.file
		if col, ok := f.Column(); ok {
			loc = fmt.Sprintf("%s:%d:%d", f.file, f.line, col)
		} else {
			loc = fmt.Sprintf("%s:%d", f.file, f.line)
		}
		fmt.Fprintf(&b, "[%s][%s] %s: %s\n",
			strings.ToUpper(f.severity.String()), f.category, loc, f.message)

		if sug := f.Suggestion(); sug != nil {
			fmt.Fprintf(&b, "  suggestion: %s\n", sug.Title)
			if sug.Detail != "" {
				fmt.Fprintf(&b, "    %s\n", sug.Detail)
			}
		}
	}

	return b.String()
}
