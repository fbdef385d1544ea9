package pdfmark

import (
	"fmt"
	"strings"
)

// WarningKind classifies non-fatal issues encountered during markup.
type WarningKind int

const (
	// WarnInvalidGeometry marks an entity region that was skipped because
	// its polygon could not be converted to a page rectangle.
	WarnInvalidGeometry WarningKind = iota

	// WarnMissingSection marks a top-level entity list (keyValuePairs,
	// tables, paragraphs) that was absent from the analysis JSON.
	WarnMissingSection
)

func (k WarningKind) String() string {
	switch k {
	case WarnInvalidGeometry:
		return "invalid geometry"
	case WarnMissingSection:
		return "missing section"
	default:
		return "unknown"
	}
}

// Warning describes a non-fatal issue. Warnings indicate degraded output
// (an entity skipped, a section absent), never a failed document: callers
// that receive a nil error always get a complete, valid PDF back.
type Warning struct {
	Kind    WarningKind
	Page    int    // 1-based page number, 0 when not page-specific
	Entity  string // entity path, e.g. "keyValuePairs[3].value"
	Message string
}

func (w Warning) String() string {
	var sb strings.Builder
	sb.WriteString(w.Kind.String())
	if w.Page > 0 {
		fmt.Fprintf(&sb, " (page %d)", w.Page)
	}
	if w.Entity != "" {
		fmt.Fprintf(&sb, " %s", w.Entity)
	}
	if w.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(w.Message)
	}
	return sb.String()
}

// FormatWarnings joins warnings into a single human-readable string, one
// warning per line.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
