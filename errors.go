package pdfmark

import (
	"errors"

	"github.com/tsawler/pdfmark/analysis"
	"github.com/tsawler/pdfmark/geometry"
)

var (
	// ErrCorruptDocument is returned when the input byte stream is not a
	// valid PDF document.
	ErrCorruptDocument = errors.New("pdfmark: not a valid PDF document")

	// ErrNoAnalysis is returned when a terminal operation runs without an
	// analysis result having been supplied.
	ErrNoAnalysis = errors.New("pdfmark: no analysis result supplied")

	// ErrSerialization is returned when the annotated document cannot be
	// written out.
	ErrSerialization = errors.New("pdfmark: could not serialize document")

	// ErrInvalidAnalysis is returned when the analysis JSON is
	// structurally wrong. Alias of [analysis.ErrInvalidAnalysis].
	ErrInvalidAnalysis = analysis.ErrInvalidAnalysis

	// ErrInvalidGeometry marks per-entity polygon failures. Entities
	// failing with this error are skipped with a warning, never aborting
	// the document. Alias of [geometry.ErrInvalidGeometry].
	ErrInvalidGeometry = geometry.ErrInvalidGeometry
)
