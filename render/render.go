// Package render draws analysis markup onto the pages of a PDF document.
//
// Entities are drawn as Square annotation objects appended to each page's
// Annots array, in a fixed layering order: paragraph backgrounds first,
// then table cells, then key-value pairs, then confidence bars. Later
// annotations paint over earlier ones, so key-value markup and confidence
// bars are never occluded by background fills.
//
// Rendering is best-effort per entity: a region whose polygon cannot be
// converted to a page rectangle is skipped and recorded, and the rest of
// the document is still annotated.
package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"github.com/tsawler/pdfmark/analysis"
	"github.com/tsawler/pdfmark/geometry"
	"github.com/tsawler/pdfmark/palette"
)

// Annotation style constants, in points except for opacities.
const (
	keyFillOpacity   = 0.2
	keyBorderWidth   = 1.0
	valueFillOpacity = 0.1
	valueBorderWidth = 0.5

	headerFillOpacity = 0.1
	headerBorderWidth = 1.0
	cellBorderWidth   = 0.5

	paragraphFillOpacity = 0.05
	paragraphBorderWidth = 0.3

	barWidth = 2.0
	barGap   = 2.0
)

// flagPrint marks an annotation to be included when the page is printed.
const flagPrint = 4

// Config controls one rendering pass.
type Config struct {
	// Unit is the coordinate convention of the analysis polygons.
	// UnitAuto resolves the convention once from the whole result.
	Unit geometry.Unit

	// Pages restricts rendering to the given 1-based page numbers.
	// A nil map means all pages.
	Pages map[int]bool

	// Logger, when set, receives a warning for every skipped entity.
	Logger logrus.FieldLogger
}

// Skip records one entity region that could not be rendered.
type Skip struct {
	Page   int
	Entity string
	Err    error
}

// Result reports the outcome of a rendering pass.
type Result struct {
	// Annotated counts entity regions that were drawn.
	Annotated int

	// Skipped lists entity regions that were dropped, typically because
	// of invalid polygon geometry.
	Skipped []Skip
}

// Annotate draws the analysis result onto the document in place. Entity
// failures are recorded in the returned Result and never abort the pass;
// only document-level problems (a broken page tree) return an error.
//
// The document's page count and page dimensions are left untouched: the
// only mutation is the addition of annotation objects.
func Annotate(doc *pdf.Data, res *analysis.Result, cfg Config) (*Result, error) {
	refs, err := pagetree.FindPages(doc)
	if err != nil {
		return nil, fmt.Errorf("reading page tree: %w", err)
	}

	unit := cfg.Unit
	if unit == geometry.UnitAuto {
		unit = geometry.DetectUnit(res.Polygons())
	}

	run := &run{
		doc:    doc,
		res:    res,
		unit:   unit,
		colors: palette.Distinct(len(res.KeyValuePairs)),
		logger: cfg.Logger,
		result: &Result{},
	}

	for i, ref := range refs {
		pageNo := i + 1
		if cfg.Pages != nil && !cfg.Pages[pageNo] {
			continue
		}
		if err := run.page(ref, i); err != nil {
			return nil, err
		}
	}

	return run.result, nil
}

type run struct {
	doc    *pdf.Data
	res    *analysis.Result
	unit   geometry.Unit
	colors []colorful.Color
	logger logrus.FieldLogger
	result *Result
}

// page annotates a single page. pageIndex is 0-based.
func (r *run) page(ref pdf.Reference, pageIndex int) error {
	dict, err := pagetree.GetPage(r.doc, pageIndex)
	if err != nil {
		return fmt.Errorf("page %d: %w", pageIndex+1, err)
	}

	mediaBox, err := pdf.GetRectangle(r.doc, dict["MediaBox"])
	if err != nil {
		return fmt.Errorf("page %d media box: %w", pageIndex+1, err)
	}
	if mediaBox == nil {
		// MediaBox is required by the PDF spec; fall back to US Letter
		// for documents that omit it.
		mediaBox = &pdf.Rectangle{LLx: 0, LLy: 0, URx: 612, URy: 792}
	}

	existing, err := pdf.GetArray(r.doc, dict["Annots"])
	if err != nil {
		return fmt.Errorf("page %d annotations: %w", pageIndex+1, err)
	}

	pr := &pageRenderer{
		run:    r,
		pageNo: pageIndex + 1,
		space: geometry.PageSpace{
			Width:  mediaBox.URx - mediaBox.LLx,
			Height: mediaBox.URy - mediaBox.LLy,
		},
		offX:   mediaBox.LLx,
		offY:   mediaBox.LLy,
		annots: append(pdf.Array{}, existing...),
	}

	// Layering order: backgrounds first, findings last.
	pr.paragraphs()
	pr.tables()
	bars := pr.keyValuePairs()
	pr.confidenceBars(bars)

	dict["Annots"] = pr.annots
	if err := r.doc.Put(ref, dict); err != nil {
		return fmt.Errorf("page %d: %w", pageIndex+1, err)
	}
	return nil
}

func (r *run) skip(pageNo int, entity string, err error) {
	r.result.Skipped = append(r.result.Skipped, Skip{Page: pageNo, Entity: entity, Err: err})
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"page":   pageNo,
			"entity": entity,
		}).Warnf("skipping entity: %v", err)
	}
}

type pageRenderer struct {
	run    *run
	pageNo int
	space  geometry.PageSpace
	offX   float64
	offY   float64
	annots pdf.Array
}

// barAnchor remembers where a confidence bar should go once the key-value
// layer has been drawn.
type barAnchor struct {
	rect  geometry.Rect
	score float64
}

func (pr *pageRenderer) paragraphs() {
	for i, para := range pr.run.res.Paragraphs {
		entity := fmt.Sprintf("paragraphs[%d]", i)
		for _, rect := range pr.rects(para.Regions, entity) {
			pr.fillSquare(rect, palette.ParagraphFill, paragraphFillOpacity, para.Text)
			pr.borderSquare(rect, palette.ParagraphBorder, paragraphBorderWidth, "")
			pr.run.result.Annotated++
		}
	}
}

func (pr *pageRenderer) tables() {
	for ti, table := range pr.run.res.Tables {
		for ci, cell := range table.Cells {
			entity := fmt.Sprintf("tables[%d].cells[%d]", ti, ci)
			for _, rect := range pr.rects(cell.Regions, entity) {
				if cell.IsHeader {
					pr.fillSquare(rect, palette.HeaderCell, headerFillOpacity, cell.Text)
					pr.borderSquare(rect, palette.HeaderCell, headerBorderWidth, "")
				} else {
					pr.borderSquare(rect, palette.DataCell, cellBorderWidth, cell.Text)
				}
				pr.run.result.Annotated++
			}
		}
	}
}

// keyValuePairs draws the key and value rectangles and returns the bar
// anchors for pairs whose confidence is known.
func (pr *pageRenderer) keyValuePairs() []barAnchor {
	var bars []barAnchor
	for i, kv := range pr.run.res.KeyValuePairs {
		color := pr.run.colors[i%len(pr.run.colors)]

		entity := fmt.Sprintf("keyValuePairs[%d].key", i)
		for _, rect := range pr.rects(kv.Key.Regions, entity) {
			pr.fillSquare(rect, color, keyFillOpacity, kv.Key.Text)
			pr.borderSquare(rect, color, keyBorderWidth, "")
			pr.run.result.Annotated++
		}

		if kv.Value == nil {
			continue
		}
		entity = fmt.Sprintf("keyValuePairs[%d].value", i)
		for _, rect := range pr.rects(kv.Value.Regions, entity) {
			pr.fillSquare(rect, color, valueFillOpacity, kv.Value.Text)
			pr.borderSquare(rect, color, valueBorderWidth, "")
			pr.run.result.Annotated++
			if kv.Confidence.Known {
				bars = append(bars, barAnchor{rect: rect, score: kv.Confidence.Score})
			}
		}
	}
	return bars
}

// confidenceBars draws one gradient-colored bar per anchor. Pairs with
// unknown confidence have no anchors: the absence of a bar is the signal
// that no confidence was reported.
func (pr *pageRenderer) confidenceBars(bars []barAnchor) {
	for _, bar := range bars {
		rect := pr.barRect(bar.rect)
		if !rect.IsValid() {
			continue
		}
		pr.solidSquare(rect, palette.ForConfidence(bar.score))
	}
}

// barRect positions a bar beside the anchor: to the right with a small
// gap, or to the left when the right edge of the page is too close.
func (pr *pageRenderer) barRect(anchor geometry.Rect) geometry.Rect {
	left := anchor.Right() + barGap
	if left+barWidth > pr.space.Width {
		left = anchor.Left() - barGap - barWidth
	}
	if left < 0 {
		left = 0
	}
	return geometry.Rect{X: left, Y: anchor.Y, Width: barWidth, Height: anchor.Height}
}

// rects converts the regions that fall on this page into page rectangles,
// recording a skip for each region with invalid geometry.
func (pr *pageRenderer) rects(regions []analysis.BoundingRegion, entity string) []geometry.Rect {
	var out []geometry.Rect
	for _, reg := range regions {
		if reg.PageNumber != pr.pageNo {
			continue
		}
		rect, err := geometry.ToPageRect(reg.Polygon, pr.space, pr.run.unit)
		if err != nil {
			pr.run.skip(pr.pageNo, entity, err)
			continue
		}
		out = append(out, rect)
	}
	return out
}

func (pr *pageRenderer) fillSquare(rect geometry.Rect, c colorful.Color, opacity float64, contents string) {
	dict := pr.squareDict(rect, contents)
	dict["IC"] = colorArray(c)
	dict["CA"] = pdf.Number(opacity)
	// Suppress the default border; a separate border square is drawn at
	// full opacity where needed.
	dict["BS"] = borderStyle(0)
	pr.add(dict)
}

func (pr *pageRenderer) borderSquare(rect geometry.Rect, c colorful.Color, width float64, contents string) {
	dict := pr.squareDict(rect, contents)
	dict["C"] = colorArray(c)
	dict["BS"] = borderStyle(width)
	pr.add(dict)
}

func (pr *pageRenderer) solidSquare(rect geometry.Rect, c colorful.Color) {
	dict := pr.squareDict(rect, "")
	dict["C"] = colorArray(c)
	dict["IC"] = colorArray(c)
	dict["BS"] = borderStyle(1)
	pr.add(dict)
}

func (pr *pageRenderer) squareDict(rect geometry.Rect, contents string) pdf.Dict {
	dict := pdf.Dict{
		"Type":    pdf.Name("Annot"),
		"Subtype": pdf.Name("Square"),
		"Rect": &pdf.Rectangle{
			LLx: pr.offX + rect.Left(),
			LLy: pr.offY + rect.Bottom(),
			URx: pr.offX + rect.Right(),
			URy: pr.offY + rect.Top(),
		},
		"F": pdf.Integer(flagPrint),
	}
	if contents != "" {
		dict["Contents"] = pdf.TextString(contents)
	}
	return dict
}

func (pr *pageRenderer) add(dict pdf.Dict) {
	ref := pr.run.doc.Alloc()
	if err := pr.run.doc.Put(ref, dict); err != nil {
		// Data.Put only fails for malformed objects, which squareDict
		// never produces.
		return
	}
	pr.annots = append(pr.annots, ref)
}

func colorArray(c colorful.Color) pdf.Array {
	return pdf.Array{pdf.Number(c.R), pdf.Number(c.G), pdf.Number(c.B)}
}

func borderStyle(width float64) pdf.Dict {
	return pdf.Dict{
		"Type": pdf.Name("Border"),
		"S":    pdf.Name("S"),
		"W":    pdf.Number(width),
	}
}
