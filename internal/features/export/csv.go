package export

import (
	"bytes"
	"encoding/csv"
)

// renderCSV writes the same two header rows the workbook carries, then
// the data and totals. Merged spans flatten to repeated labels.
func renderCSV(g *grid) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if g.Empty {
		if err := w.Write([]string{noDataMessage}); err != nil {
			return nil, err
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	}

	if err := w.Write(append([]string{g.RowLabel}, g.Outer...)); err != nil {
		return nil, err
	}
	if err := w.Write(append([]string{g.RowLabel}, g.Leaf...)); err != nil {
		return nil, err
	}

	for _, row := range g.Rows {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, row.Label)
		for _, v := range row.Cells {
			record = append(record, formatCell(v))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	totals := make([]string, 0, len(g.Totals)+1)
	totals = append(totals, "Total")
	for _, t := range g.Totals {
		totals = append(totals, formatCell(t))
	}
	if err := w.Write(totals); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
