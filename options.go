package pdfmark

import (
	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfmark/geometry"
)

// MarkupOptions holds configuration for a markup pass.
type MarkupOptions struct {
	// Coordinate convention of the analysis polygons
	unit geometry.Unit

	// Page selection (1-indexed in API, stored as-is; nil means all pages)
	pages []int

	// Optional logger for skipped-entity warnings
	logger logrus.FieldLogger
}

// defaultOptions returns the default markup options.
func defaultOptions() MarkupOptions {
	return MarkupOptions{
		unit:   geometry.UnitAuto,
		pages:  nil,
		logger: nil,
	}
}

// clone creates a deep copy of MarkupOptions.
func (o MarkupOptions) clone() MarkupOptions {
	newOpts := MarkupOptions{
		unit:   o.unit,
		logger: o.logger,
	}

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}
