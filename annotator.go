package pdfmark

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"seehuhn.de/go/pdf"

	"github.com/tsawler/pdfmark/analysis"
	"github.com/tsawler/pdfmark/geometry"
	"github.com/tsawler/pdfmark/render"
)

// Annotator provides a fluent interface for marking up a PDF with an
// analysis result. Each configuration method returns a new Annotator
// instance, making it safe for concurrent use and allowing method
// chaining. An Annotator holds no open resources: the PDF is read,
// annotated, and serialized within a single terminal operation.
type Annotator struct {
	// Source (one of the two)
	filename string
	pdfBytes []byte

	// Analysis input (one of the three)
	result       *analysis.Result
	analysisJSON []byte
	analysisPath string

	// Configuration
	options MarkupOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Annotator with a deep copy of
// options. This ensures immutability - each chain method returns a new
// instance.
func (a *Annotator) clone() *Annotator {
	return &Annotator{
		filename:     a.filename,
		pdfBytes:     a.pdfBytes,
		result:       a.result,
		analysisJSON: a.analysisJSON,
		analysisPath: a.analysisPath,
		options:      a.options.clone(),
		err:          a.err,
	}
}

// Analysis supplies an already-parsed analysis result.
func (a *Annotator) Analysis(result *analysis.Result) *Annotator {
	newA := a.clone()
	newA.result = result
	return newA
}

// AnalysisJSON supplies the analysis result as raw JSON. The bytes are
// parsed when a terminal operation runs.
func (a *Annotator) AnalysisJSON(data []byte) *Annotator {
	newA := a.clone()
	newA.analysisJSON = data
	return newA
}

// AnalysisFile supplies the analysis result as a JSON file on disk.
func (a *Annotator) AnalysisFile(path string) *Annotator {
	newA := a.clone()
	newA.analysisPath = path
	return newA
}

// Units sets the coordinate convention of the analysis polygons. The
// default, [UnitAuto], inspects the data once per document: coordinates
// that all fit inside the unit square are treated as normalized
// fractions, anything larger as inches.
func (a *Annotator) Units(unit geometry.Unit) *Annotator {
	newA := a.clone()
	newA.options.unit = unit
	return newA
}

// Pages restricts markup to the given 1-based page numbers. Other pages
// are passed through unchanged.
func (a *Annotator) Pages(pageNumbers ...int) *Annotator {
	newA := a.clone()
	newA.options.pages = append([]int(nil), pageNumbers...)
	return newA
}

// Logger sets a logger that receives a warning for each skipped entity
// as it happens. Without a logger the Annotator stays silent; skipped
// entities are still reported through the returned warnings.
func (a *Annotator) Logger(logger logrus.FieldLogger) *Annotator {
	newA := a.clone()
	newA.options.logger = logger
	return newA
}

// Bytes runs the markup pipeline and returns the annotated PDF.
//
// The returned warnings describe non-fatal degradations: entity regions
// skipped for invalid geometry, or entity lists absent from the analysis
// JSON. A nil error always comes with a complete, valid PDF whose page
// count and page dimensions match the input.
func (a *Annotator) Bytes() ([]byte, []Warning, error) {
	if a.err != nil {
		return nil, nil, a.err
	}

	result, warnings, err := a.loadAnalysis()
	if err != nil {
		return nil, nil, err
	}

	pdfBytes := a.pdfBytes
	if pdfBytes == nil {
		pdfBytes, err = os.ReadFile(a.filename)
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading PDF file")
		}
	}

	doc, err := pdf.Read(bytes.NewReader(pdfBytes), nil)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrCorruptDocument, "%v", err)
	}

	rendered, err := render.Annotate(doc, result, render.Config{
		Unit:   a.options.unit,
		Pages:  pageSet(a.options.pages),
		Logger: a.options.logger,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "annotating document")
	}
	for _, skip := range rendered.Skipped {
		warnings = append(warnings, Warning{
			Kind:    WarnInvalidGeometry,
			Page:    skip.Page,
			Entity:  skip.Entity,
			Message: skip.Err.Error(),
		})
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, warnings, errors.Wrapf(ErrSerialization, "%v", err)
	}
	return buf.Bytes(), warnings, nil
}

// WriteTo runs the markup pipeline and writes the annotated PDF to w.
func (a *Annotator) WriteTo(w io.Writer) ([]Warning, error) {
	out, warnings, err := a.Bytes()
	if err != nil {
		return warnings, err
	}
	if _, err := w.Write(out); err != nil {
		return warnings, errors.Wrapf(ErrSerialization, "%v", err)
	}
	return warnings, nil
}

// WriteFile runs the markup pipeline and writes the annotated PDF to a
// file.
func (a *Annotator) WriteFile(path string) ([]Warning, error) {
	out, warnings, err := a.Bytes()
	if err != nil {
		return warnings, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return warnings, errors.Wrapf(ErrSerialization, "%v", err)
	}
	return warnings, nil
}

// loadAnalysis resolves the analysis input to a parsed Result, reporting
// absent entity lists as warnings.
func (a *Annotator) loadAnalysis() (*analysis.Result, []Warning, error) {
	result := a.result
	if result == nil {
		data := a.analysisJSON
		if data == nil && a.analysisPath != "" {
			var err error
			data, err = os.ReadFile(a.analysisPath)
			if err != nil {
				return nil, nil, errors.Wrap(err, "reading analysis file")
			}
		}
		if data == nil {
			return nil, nil, ErrNoAnalysis
		}
		var err error
		result, err = analysis.Parse(data)
		if err != nil {
			return nil, nil, err
		}
	}

	var warnings []Warning
	for _, section := range result.MissingSections {
		warnings = append(warnings, Warning{
			Kind:    WarnMissingSection,
			Entity:  section,
			Message: "list absent from analysis result, treated as empty",
		})
	}
	return result, warnings, nil
}

func pageSet(pages []int) map[int]bool {
	if len(pages) == 0 {
		return nil
	}
	set := make(map[int]bool, len(pages))
	for _, p := range pages {
		set[p] = true
	}
	return set
}
