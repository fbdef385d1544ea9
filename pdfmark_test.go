package pdfmark

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// testPDF builds a minimal PDF with the given number of empty
// letter-sized pages.
func testPDF(t *testing.T, pageCount int) []byte {
	t.Helper()

	doc := pdf.NewData(pdf.V1_7)
	pagesRef := doc.Alloc()
	kids := pdf.Array{}
	for i := 0; i < pageCount; i++ {
		ref := doc.Alloc()
		err := doc.Put(ref, pdf.Dict{
			"Type":     pdf.Name("Page"),
			"Parent":   pagesRef,
			"MediaBox": &pdf.Rectangle{LLx: 0, LLy: 0, URx: 612, URy: 792},
		})
		if err != nil {
			t.Fatalf("building page %d: %v", i, err)
		}
		kids = append(kids, ref)
	}
	err := doc.Put(pagesRef, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  kids,
		"Count": pdf.Integer(pageCount),
	})
	if err != nil {
		t.Fatalf("building page tree: %v", err)
	}
	doc.GetMeta().Catalog.Pages = pagesRef

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("serializing test PDF: %v", err)
	}
	return buf.Bytes()
}

var sampleAnalysis = []byte(`{
	"keyValuePairs": [
		{
			"key": {"polygon": [1, 1, 2, 1, 2, 1.25, 1, 1.25], "text": "Invoice No"},
			"value": {"polygon": [2.5, 1, 3.5, 1, 3.5, 1.25, 2.5, 1.25], "text": "12345"},
			"confidence": 0.73
		},
		{
			"key": {"polygon": [1, 2, 2, 2, 2, 2.25, 1, 2.25], "text": "Date"},
			"value": {"polygon": [2.5, 2, 3.5, 2, 3.5, 2.25, 2.5, 2.25], "text": "2024-01-01"},
			"confidence": null
		}
	],
	"tables": [],
	"paragraphs": [
		{"polygon": [1, 5, 4, 5, 4, 6, 1, 6], "text": "Fine print."}
	]
}`)

func TestBytesRoundTrip(t *testing.T) {
	input := testPDF(t, 2)

	out, warnings, err := FromBytes(input).
		AnalysisJSON(sampleAnalysis).
		Units(UnitInch).
		Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings:\n%s", FormatWarnings(warnings))
	}

	// The output must be a valid PDF with the input's page count and
	// dimensions.
	doc, err := pdf.Read(bytes.NewReader(out), nil)
	if err != nil {
		t.Fatalf("output is not a valid PDF: %v", err)
	}
	numPages, err := pagetree.NumPages(doc)
	if err != nil {
		t.Fatal(err)
	}
	if numPages != 2 {
		t.Errorf("page count changed: got %d, want 2", numPages)
	}

	page, err := pagetree.GetPage(doc, 0)
	if err != nil {
		t.Fatal(err)
	}
	mediaBox, err := pdf.GetRectangle(doc, page["MediaBox"])
	if err != nil {
		t.Fatal(err)
	}
	want := &pdf.Rectangle{LLx: 0, LLy: 0, URx: 612, URy: 792}
	if diff := cmp.Diff(want, mediaBox); diff != "" {
		t.Errorf("page dimensions changed (-want +got):\n%s", diff)
	}

	// Markup landed on page 1 as annotations.
	annots, err := pdf.GetArray(doc, page["Annots"])
	if err != nil {
		t.Fatal(err)
	}
	// 1 paragraph (2 squares) + 2 keys (2 each) + 2 values (2 each) +
	// 1 bar for the single known confidence.
	if len(annots) != 11 {
		t.Errorf("page 1 has %d annotations, want 11", len(annots))
	}
}

func TestAnnotatingIsRepeatable(t *testing.T) {
	// Each invocation is independent; the same inputs give the same
	// output and the source annotator is unchanged.
	input := testPDF(t, 1)
	base := FromBytes(input).AnalysisJSON(sampleAnalysis).Units(UnitInch)

	annotCount := func(out []byte) int {
		doc, err := pdf.Read(bytes.NewReader(out), nil)
		if err != nil {
			t.Fatalf("output is not a valid PDF: %v", err)
		}
		page, err := pagetree.GetPage(doc, 0)
		if err != nil {
			t.Fatal(err)
		}
		annots, err := pdf.GetArray(doc, page["Annots"])
		if err != nil {
			t.Fatal(err)
		}
		return len(annots)
	}

	first, _, err := base.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := base.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if annotCount(first) != annotCount(second) {
		t.Error("two runs of the same annotator differ")
	}
}

func TestCorruptDocument(t *testing.T) {
	_, _, err := FromBytes([]byte("definitely not a PDF")).
		AnalysisJSON(sampleAnalysis).
		Bytes()
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("expected ErrCorruptDocument, got %v", err)
	}
}

func TestInvalidAnalysis(t *testing.T) {
	_, _, err := FromBytes(testPDF(t, 1)).
		AnalysisJSON([]byte(`{"keyValuePairs": 7}`)).
		Bytes()
	if !errors.Is(err, ErrInvalidAnalysis) {
		t.Errorf("expected ErrInvalidAnalysis, got %v", err)
	}
}

func TestNoAnalysis(t *testing.T) {
	_, _, err := FromBytes(testPDF(t, 1)).Bytes()
	if !errors.Is(err, ErrNoAnalysis) {
		t.Errorf("expected ErrNoAnalysis, got %v", err)
	}
}

func TestMissingSectionsWarn(t *testing.T) {
	out, warnings, err := FromBytes(testPDF(t, 1)).
		AnalysisJSON([]byte(`{}`)).
		Bytes()
	if err != nil {
		t.Fatalf("an empty analysis must not fail: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected a valid PDF even with nothing to annotate")
	}
	if len(warnings) != 3 {
		t.Errorf("got %d warnings, want 3 (one per absent list):\n%s",
			len(warnings), FormatWarnings(warnings))
	}
	for _, w := range warnings {
		if w.Kind != WarnMissingSection {
			t.Errorf("unexpected warning kind: %v", w)
		}
	}
}

func TestSkippedEntityWarns(t *testing.T) {
	analysisJSON := []byte(`{
		"keyValuePairs": [],
		"tables": [],
		"paragraphs": [
			{"polygon": [1, 1], "text": "broken"},
			{"polygon": [1, 5, 4, 5, 4, 6, 1, 6], "text": "fine"}
		]
	}`)

	out, warnings, err := FromBytes(testPDF(t, 1)).
		AnalysisJSON(analysisJSON).
		Units(UnitInch).
		Bytes()
	if err != nil {
		t.Fatalf("a bad polygon must not fail the document: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected annotated output")
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1:\n%s", len(warnings), FormatWarnings(warnings))
	}
	w := warnings[0]
	if w.Kind != WarnInvalidGeometry || w.Page != 1 || w.Entity != "paragraphs[0]" {
		t.Errorf("unexpected warning: %+v", w)
	}
}

func TestPagesOption(t *testing.T) {
	out, _, err := FromBytes(testPDF(t, 3)).
		AnalysisJSON(sampleAnalysis).
		Units(UnitInch).
		Pages(2).
		Bytes()
	if err != nil {
		t.Fatal(err)
	}

	doc, err := pdf.Read(bytes.NewReader(out), nil)
	if err != nil {
		t.Fatal(err)
	}
	for pageIndex := 0; pageIndex < 3; pageIndex++ {
		page, err := pagetree.GetPage(doc, pageIndex)
		if err != nil {
			t.Fatal(err)
		}
		annots, err := pdf.GetArray(doc, page["Annots"])
		if err != nil {
			t.Fatal(err)
		}
		// sampleAnalysis places everything on page 1, which is not
		// selected, so no page gains annotations.
		if len(annots) != 0 {
			t.Errorf("page %d has %d annotations, want 0", pageIndex+1, len(annots))
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "marked.pdf")

	warnings, err := FromBytes(testPDF(t, 1)).
		AnalysisJSON(sampleAnalysis).
		Units(UnitInch).
		WriteFile(outPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings:\n%s", FormatWarnings(warnings))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pdf.Read(bytes.NewReader(data), nil); err != nil {
		t.Errorf("written file is not a valid PDF: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, _, err := Open(filepath.Join(t.TempDir(), "nope.pdf")).
		AnalysisJSON(sampleAnalysis).
		Bytes()
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestChainingDoesNotMutate(t *testing.T) {
	base := FromBytes(testPDF(t, 1)).AnalysisJSON(sampleAnalysis)
	derived := base.Pages(1).Units(UnitNormalized)

	if base.options.unit != UnitAuto {
		t.Error("deriving an annotator mutated the base unit")
	}
	if base.options.pages != nil {
		t.Error("deriving an annotator mutated the base page selection")
	}
	if derived.options.unit != UnitNormalized || len(derived.options.pages) != 1 {
		t.Error("derived annotator lost its configuration")
	}
}

func TestFormatWarnings(t *testing.T) {
	warnings := []Warning{
		{Kind: WarnInvalidGeometry, Page: 2, Entity: "paragraphs[0]", Message: "2 points"},
		{Kind: WarnMissingSection, Entity: "tables"},
	}
	got := FormatWarnings(warnings)
	want := "invalid geometry (page 2) paragraphs[0]: 2 points\nmissing section tables"
	if got != want {
		t.Errorf("FormatWarnings:\ngot  %q\nwant %q", got, want)
	}
	if FormatWarnings(nil) != "" {
		t.Error("FormatWarnings(nil) should be empty")
	}
}
