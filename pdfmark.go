// Package pdfmark provides a fluent API for marking up PDF files with
// document-analysis results.
//
// Given a PDF and an analysis result (key-value pairs, tables, and
// paragraphs with bounding polygons), pdfmark produces a new PDF with
// colored overlay annotations: every key-value pair gets its own distinct
// color, table cells are styled by header/data kind, paragraphs get a
// uniform background, and each key-value pair with a reported confidence
// gets a small red-to-green gradient bar beside its value.
//
// Basic usage:
//
//	out, warnings, err := pdfmark.Open("document.pdf").
//	    AnalysisFile("analysis.json").
//	    Bytes()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfmark.FormatWarnings(warnings))
//	}
//
// With options:
//
//	warnings, err := pdfmark.FromBytes(pdfBytes).
//	    Analysis(result).
//	    Units(pdfmark.UnitInch).
//	    Pages(1, 2).
//	    WriteFile("marked.pdf")
//
// The annotated document keeps the original page count, order, and
// content; markup is added purely as annotation objects.
package pdfmark

import (
	"github.com/tsawler/pdfmark/geometry"
)

// Unit is the coordinate convention of analysis polygons, re-exported
// from the geometry package for use with [Annotator.Units].
type Unit = geometry.Unit

// Unit conventions for analysis polygon coordinates.
const (
	UnitAuto       = geometry.UnitAuto
	UnitInch       = geometry.UnitInch
	UnitNormalized = geometry.UnitNormalized
)

// Open prepares an Annotator for a PDF file on disk. The file is read
// when a terminal operation runs.
//
// Example:
//
//	out, warnings, err := pdfmark.Open("document.pdf").AnalysisFile("analysis.json").Bytes()
func Open(filename string) *Annotator {
	return &Annotator{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes prepares an Annotator for an in-memory PDF. The slice is not
// modified.
func FromBytes(pdfBytes []byte) *Annotator {
	return &Annotator{
		pdfBytes: pdfBytes,
		options:  defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustBytes is a helper that wraps a call to Bytes() and panics if the
// error is non-nil. It discards warnings and returns just the value.
func MustBytes(val []byte, _ []Warning, err error) []byte {
	if err != nil {
		panic(err)
	}
	return val
}
