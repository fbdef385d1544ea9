package analysis

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pdfmark/geometry"
)

// ErrInvalidAnalysis is returned when the analysis JSON is structurally
// wrong: not an object, or a top-level entity list of the wrong type.
var ErrInvalidAnalysis = errors.New("pdfmark: invalid analysis result")

// Parse decodes an analysis result from JSON.
//
// The top-level object may be the result itself or an envelope of the
// form {"analyzeResult": {...}}. Each of the keyValuePairs, tables and
// paragraphs lists may be empty or absent; absent lists are recorded in
// [Result.MissingSections]. A structurally wrong list (for example a
// string where an array is expected) fails with an error wrapping
// [ErrInvalidAnalysis].
func Parse(data []byte) (*Result, error) {
	var env struct {
		AnalyzeResult json.RawMessage `json:"analyzeResult"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	if len(env.AnalyzeResult) > 0 && string(env.AnalyzeResult) != "null" {
		data = env.AnalyzeResult
	}

	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}

	res := &Result{}
	if raw.KeyValuePairs == nil {
		res.MissingSections = append(res.MissingSections, "keyValuePairs")
	}
	if raw.Tables == nil {
		res.MissingSections = append(res.MissingSections, "tables")
	}
	if raw.Paragraphs == nil {
		res.MissingSections = append(res.MissingSections, "paragraphs")
	}

	if raw.KeyValuePairs != nil {
		res.KeyValuePairs = make([]KeyValuePair, 0, len(*raw.KeyValuePairs))
		for _, kv := range *raw.KeyValuePairs {
			pair := KeyValuePair{}
			if kv.Key != nil {
				pair.Key = kv.Key.field()
			}
			if kv.Value != nil {
				value := kv.Value.field()
				pair.Value = &value
			}
			if kv.Confidence != nil {
				pair.Confidence = KnownConfidence(*kv.Confidence)
			}
			res.KeyValuePairs = append(res.KeyValuePairs, pair)
		}
	}

	if raw.Tables != nil {
		res.Tables = make([]Table, 0, len(*raw.Tables))
		for _, t := range *raw.Tables {
			table := Table{Cells: make([]Cell, 0, len(t.Cells))}
			for _, c := range t.Cells {
				table.Cells = append(table.Cells, Cell{
					Text:     normText(c.text()),
					IsHeader: c.isHeader(),
					Regions:  regions(c.BoundingRegions, c.Polygon),
				})
			}
			res.Tables = append(res.Tables, table)
		}
	}

	if raw.Paragraphs != nil {
		res.Paragraphs = make([]Paragraph, 0, len(*raw.Paragraphs))
		for _, p := range *raw.Paragraphs {
			res.Paragraphs = append(res.Paragraphs, Paragraph{
				Text:    normText(p.text()),
				Regions: regions(p.BoundingRegions, p.Polygon),
			})
		}
	}

	return res, nil
}

// rawResult mirrors the wire format. Pointer slices distinguish an absent
// list from a present-but-empty one.
type rawResult struct {
	KeyValuePairs *[]rawKeyValuePair `json:"keyValuePairs"`
	Tables        *[]rawTable        `json:"tables"`
	Paragraphs    *[]rawParagraph    `json:"paragraphs"`
}

type rawKeyValuePair struct {
	Key        *rawField `json:"key"`
	Value      *rawField `json:"value"`
	Confidence *float64  `json:"confidence"`
}

type rawField struct {
	Text            string      `json:"text"`
	Content         string      `json:"content"`
	Polygon         rawPolygon  `json:"polygon"`
	BoundingRegions []rawRegion `json:"boundingRegions"`
}

func (f *rawField) field() Field {
	return Field{
		Text:    normText(firstOf(f.Text, f.Content)),
		Regions: regions(f.BoundingRegions, f.Polygon),
	}
}

type rawTable struct {
	Cells []rawCell `json:"cells"`
}

type rawCell struct {
	Text            string      `json:"text"`
	Content         string      `json:"content"`
	Kind            string      `json:"kind"`
	IsHeaderFlag    *bool       `json:"isHeader"`
	Polygon         rawPolygon  `json:"polygon"`
	BoundingRegions []rawRegion `json:"boundingRegions"`
}

func (c *rawCell) text() string {
	return firstOf(c.Text, c.Content)
}

func (c *rawCell) isHeader() bool {
	if c.IsHeaderFlag != nil {
		return *c.IsHeaderFlag
	}
	return c.Kind == "columnHeader" || c.Kind == "rowHeader"
}

type rawParagraph struct {
	Text            string      `json:"text"`
	Content         string      `json:"content"`
	Polygon         rawPolygon  `json:"polygon"`
	BoundingRegions []rawRegion `json:"boundingRegions"`
}

func (p *rawParagraph) text() string {
	return firstOf(p.Text, p.Content)
}

type rawRegion struct {
	PageNumber int        `json:"pageNumber"`
	Polygon    rawPolygon `json:"polygon"`
}

// rawPolygon accepts both polygon encodings seen in the wild: a flattened
// number list [x0, y0, x1, y1, ...] and a point-pair list [[x0, y0], ...].
type rawPolygon geometry.Polygon

func (p *rawPolygon) UnmarshalJSON(data []byte) error {
	var flat []float64
	if err := json.Unmarshal(data, &flat); err == nil {
		*p = rawPolygon(flat)
		return nil
	}

	var pairs [][]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("polygon must be a number list or a point list: %w", err)
	}
	flat = make([]float64, 0, 2*len(pairs))
	for i, pt := range pairs {
		if len(pt) != 2 {
			return fmt.Errorf("polygon point %d has %d coordinates, want 2", i, len(pt))
		}
		flat = append(flat, pt[0], pt[1])
	}
	*p = rawPolygon(flat)
	return nil
}

// regions normalizes the two location encodings: explicit bounding
// regions, or a bare polygon which is placed on page 1.
func regions(raw []rawRegion, bare rawPolygon) []BoundingRegion {
	if len(raw) > 0 {
		out := make([]BoundingRegion, 0, len(raw))
		for _, r := range raw {
			page := r.PageNumber
			if page < 1 {
				page = 1
			}
			out = append(out, BoundingRegion{
				PageNumber: page,
				Polygon:    geometry.Polygon(r.Polygon),
			})
		}
		return out
	}
	if len(bare) > 0 {
		return []BoundingRegion{{PageNumber: 1, Polygon: geometry.Polygon(bare)}}
	}
	return nil
}

func normText(s string) string {
	return norm.NFC.String(s)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
