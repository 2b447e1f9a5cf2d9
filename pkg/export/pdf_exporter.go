package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Table is a tabular document body. Widths are relative weights; an empty
// slice spreads columns evenly.
type Table struct {
	Headers []string
	Widths  []float64
	Rows    [][]string
}

// Document carries the table plus heading lines.
type Document struct {
	Title       string
	Subtitle    string
	Table       Table
	GeneratedAt time.Time
}

// PDFExporter renders documents into A4 landscape PDFs.
type PDFExporter struct {
	font string
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{font: "Arial"}
}

// Render creates a PDF with a heading, a repeated table header on every page
// and a page footer.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if len(doc.Table.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	widths, err := columnWidths(doc.Table, 277.0)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(e.font, "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s - page %d/{nb}", generated.Format("2006-01-02 15:04"), pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")

	header := func() {
		pdf.SetFont(e.font, "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range doc.Table.Headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(e.font, "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	if doc.Title != "" {
		pdf.SetFont(e.font, "B", 14)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont(e.font, "", 10)
		pdf.CellFormat(0, 6, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
	header()

	if len(doc.Table.Rows) == 0 {
		pdf.CellFormat(sum(widths), 7, "no entries", "1", 1, "C", false, 0, "")
	}
	for _, row := range doc.Table.Rows {
		for i := range doc.Table.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(t Table, total float64) ([]float64, error) {
	n := len(t.Headers)
	if len(t.Widths) == 0 {
		out := make([]float64, n)
		for i := range out {
			out[i] = total / float64(n)
		}
		return out, nil
	}
	if len(t.Widths) != n {
		return nil, fmt.Errorf("pdf has %d headers but %d widths", n, len(t.Widths))
	}
	weight := sum(t.Widths)
	if weight <= 0 {
		return nil, fmt.Errorf("pdf column widths must be positive")
	}
	out := make([]float64, n)
	for i, w := range t.Widths {
		out[i] = total * w / weight
	}
	return out, nil
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}
