package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// renderPDF prints a titled one-page-per-overflow table. PDF keeps a
// single header row, so each column shows its leaf label only.
func renderPDF(g *grid, reportName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Report: %s", reportName), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if g.Empty {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, noDataMessage, "", 1, "L", false, 0, "")
		return pdfBytes(pdf)
	}

	cols := len(g.Leaf) + 1
	colWidth := (210.0 - 20.0) / float64(cols)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(colWidth, 8, g.RowLabel, "1", 0, "C", true, 0, "")
	for _, label := range g.Leaf {
		pdf.CellFormat(colWidth, 8, label, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range g.Rows {
		pdf.CellFormat(colWidth, 7, row.Label, "1", 0, "C", false, 0, "")
		for _, v := range row.Cells {
			pdf.CellFormat(colWidth, 7, formatCell(v), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(211, 211, 211)
	pdf.CellFormat(colWidth, 7, "Total", "1", 0, "C", true, 0, "")
	for _, t := range g.Totals {
		pdf.CellFormat(colWidth, 7, formatCell(t), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	return pdfBytes(pdf)
}

func pdfBytes(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
