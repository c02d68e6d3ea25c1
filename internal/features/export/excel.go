package export

import (
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	pivotSheet = "Pivot Table"
	infoSheet  = "Report Info"
)

// renderExcel lays the grid out as a workbook: a two-row header with
// the outer group labels merged across their span, the data rows, a
// bold totals row, and a second sheet with export metadata. Output is
// byte-stable for a fixed exportedAt.
func renderExcel(g *grid, reportName string, totalCount int, exportedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", pivotSheet); err != nil {
		return nil, err
	}

	if g.Empty {
		f.SetCellValue(pivotSheet, "A1", noDataMessage)
		buffer, err := f.WriteToBuffer()
		if err != nil {
			return nil, err
		}
		return buffer.Bytes(), nil
	}

	thin := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	outerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D6EAF8"}, Pattern: 1},
		Border:    thin,
		Alignment: centered,
	})
	leafStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E8F4FD"}, Pattern: 1},
		Border:    thin,
		Alignment: centered,
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Border:    thin,
		Alignment: centered,
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    thin,
		Alignment: centered,
	})

	set := func(col, row int, value interface{}, style int) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		f.SetCellValue(pivotSheet, cell, value)
		f.SetCellStyle(pivotSheet, cell, cell, style)
	}
	merge := func(c1, r1, c2, r2 int) {
		from, _ := excelize.CoordinatesToCellName(c1, r1)
		to, _ := excelize.CoordinatesToCellName(c2, r2)
		f.MergeCell(pivotSheet, from, to)
	}

	// Row label heads both header rows.
	set(1, 1, g.RowLabel, outerStyle)
	set(1, 2, g.RowLabel, leafStyle)
	merge(1, 1, 1, 2)

	for i := 0; i < len(g.Outer); {
		span := 1
		for i+span < len(g.Outer) && g.Outer[i+span] == g.Outer[i] {
			span++
		}
		col := i + 2
		set(col, 1, g.Outer[i], outerStyle)
		if span > 1 {
			for j := 1; j < span; j++ {
				set(col+j, 1, g.Outer[i], outerStyle)
			}
			merge(col, 1, col+span-1, 1)
			for j := 0; j < span; j++ {
				set(col+j, 2, g.Leaf[i+j], leafStyle)
			}
		} else if g.Leaf[i] == g.Outer[i] {
			// Single-level column, one label across both rows.
			set(col, 2, g.Leaf[i], leafStyle)
			merge(col, 1, col, 2)
		} else {
			set(col, 2, g.Leaf[i], leafStyle)
		}
		i += span
	}

	for r, row := range g.Rows {
		set(1, r+3, row.Label, cellStyle)
		for c, v := range row.Cells {
			set(c+2, r+3, v, cellStyle)
		}
	}

	totalsRow := len(g.Rows) + 3
	set(1, totalsRow, "Total", totalStyle)
	for c, total := range g.Totals {
		set(c+2, totalsRow, total, totalStyle)
	}

	setColumnWidths(f, g)

	if _, err := f.NewSheet(infoSheet); err != nil {
		return nil, err
	}
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	info := [][2]interface{}{
		{"Report Name", reportName},
		{"Export Date", exportedAt.Format("2006-01-02 15:04:05")},
		{"Total Records", totalCount},
	}
	for r, pair := range info {
		label, _ := excelize.CoordinatesToCellName(1, r+1)
		value, _ := excelize.CoordinatesToCellName(2, r+1)
		f.SetCellValue(infoSheet, label, pair[0])
		f.SetCellStyle(infoSheet, label, label, boldStyle)
		f.SetCellValue(infoSheet, value, pair[1])
	}
	f.SetColWidth(infoSheet, "A", "B", 22)
	f.SetActiveSheet(0)

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// setColumnWidths sizes each column to its widest rendered value plus
// padding, within fixed bounds so sparse columns stay readable and
// long labels do not blow the sheet up.
func setColumnWidths(f *excelize.File, g *grid) {
	widths := make([]int, len(g.keys)+1)

	grow := func(col int, s string) {
		if len(s) > widths[col] {
			widths[col] = len(s)
		}
	}

	grow(0, g.RowLabel)
	grow(0, "Total")
	for i := range g.Outer {
		grow(i+1, g.Outer[i])
		grow(i+1, g.Leaf[i])
	}
	for _, row := range g.Rows {
		grow(0, row.Label)
		for c, v := range row.Cells {
			grow(c+1, formatCell(v))
		}
	}
	for c, total := range g.Totals {
		grow(c+1, formatCell(total))
	}

	for i, w := range widths {
		minWidth := 10
		if i == 0 {
			minWidth = 12
		}
		w += 2
		if w < minWidth {
			w = minWidth
		}
		if w > 20 {
			w = 20
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(pivotSheet, name, name, float64(w))
	}
}
