// Package analysis provides the typed representation of a document
// analysis result.
//
// An analysis result is the structured output of a document-understanding
// service: key-value pairs, tables, and paragraphs, each located on the
// page by one or more bounding polygons. This package only parses and
// validates that data; it performs no recognition of its own.
//
// [Parse] accepts both the bare result object and the common
// {"analyzeResult": {...}} service envelope. Missing confidence values are
// preserved as a distinct unknown state rather than being coerced to a
// number.
package analysis

import "github.com/tsawler/pdfmark/geometry"

// Result is a parsed analysis result. It is immutable once parsed and
// holds no reference to the document it describes.
type Result struct {
	KeyValuePairs []KeyValuePair
	Tables        []Table
	Paragraphs    []Paragraph

	// MissingSections lists top-level entity lists that were absent from
	// the input (as opposed to present but empty). An absent list is not
	// an error; callers may want to surface it as a warning.
	MissingSections []string
}

// Polygons returns every polygon in the result. It is used to detect the
// coordinate unit convention of the whole document at once.
func (r *Result) Polygons() []geometry.Polygon {
	var polys []geometry.Polygon
	add := func(regions []BoundingRegion) {
		for _, reg := range regions {
			polys = append(polys, reg.Polygon)
		}
	}
	for _, kv := range r.KeyValuePairs {
		add(kv.Key.Regions)
		if kv.Value != nil {
			add(kv.Value.Regions)
		}
	}
	for _, table := range r.Tables {
		for _, cell := range table.Cells {
			add(cell.Regions)
		}
	}
	for _, para := range r.Paragraphs {
		add(para.Regions)
	}
	return polys
}

// BoundingRegion locates a polygon on one page. Page numbers are 1-based.
type BoundingRegion struct {
	PageNumber int
	Polygon    geometry.Polygon
}

// Field is one side of a key-value pair: its text and the regions it
// occupies.
type Field struct {
	Text    string
	Regions []BoundingRegion
}

// Confidence is the tri-state extraction confidence of a key-value pair:
// either a known score in [0, 1] or unknown. The zero value is unknown.
type Confidence struct {
	Score float64
	Known bool
}

// KnownConfidence returns a Confidence carrying the given score.
func KnownConfidence(score float64) Confidence {
	return Confidence{Score: score, Known: true}
}

// KeyValuePair is one extracted key-value pair. Value is nil when the
// service found a key without a value.
type KeyValuePair struct {
	Key        Field
	Value      *Field
	Confidence Confidence
}

// Cell is one table cell. Cells may be irregular; no rectangularity is
// implied.
type Cell struct {
	Text     string
	IsHeader bool
	Regions  []BoundingRegion
}

// Table is an ordered sequence of cells.
type Table struct {
	Cells []Cell
}

// Paragraph is a text region with no confidence attached.
type Paragraph struct {
	Text    string
	Regions []BoundingRegion
}
