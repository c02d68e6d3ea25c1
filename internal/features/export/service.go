package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crm-reports/internal/common/models"
	"crm-reports/internal/features/audit"
	"crm-reports/internal/features/report"
	"crm-reports/internal/features/schema"

	"go.uber.org/zap"
)

const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
)

const noDataMessage = "No pivot table data available"

// File is one rendered export, ready to stream.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type ExportService interface {
	// Export runs the report with the caller's draft applied and
	// renders the pivot in the requested format. Unknown formats fall
	// back to excel.
	Export(ctx context.Context, reportID, userID, format string) (*File, error)
}

type ExportServiceImpl struct {
	Reports  report.ReportService
	Drafts   report.DraftOverlay
	Registry *schema.Registry
	Audit    audit.AuditService
	Logger   *zap.Logger

	now func() time.Time
}

func NewExportService(reports report.ReportService, drafts report.DraftOverlay, registry *schema.Registry, auditService audit.AuditService, logger *zap.Logger) ExportService {
	return &ExportServiceImpl{
		Reports:  reports,
		Drafts:   drafts,
		Registry: registry,
		Audit:    auditService,
		Logger:   logger,
		now:      time.Now,
	}
}

func (s *ExportServiceImpl) Export(ctx context.Context, reportID, userID, format string) (*File, error) {
	merged, _, err := s.Drafts.MergedReport(ctx, reportID, userID)
	if err != nil {
		return nil, err
	}

	run, err := s.Reports.RunConfig(ctx, merged, false)
	if err != nil {
		return nil, err
	}

	g := buildGrid(run.Pivot, s.rowLabel(merged))

	var data []byte
	var ext, contentType string
	switch format {
	case FormatCSV:
		ext, contentType = "csv", "text/csv"
		data, err = renderCSV(g)
	case FormatPDF:
		ext, contentType = "pdf", "application/pdf"
		data, err = renderPDF(g, merged.Name)
	default:
		ext, contentType = "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		data, err = renderExcel(g, merged.Name, run.Pivot.TotalCount, s.now())
	}
	if err != nil {
		s.Logger.Error("report export failed",
			zap.String("report_id", reportID),
			zap.String("format", format),
			zap.Error(err))
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, models.AuditActionExport, "reports", reportID, map[string]models.Change{
		"format": {New: ext},
	})

	return &File{
		Name:        fmt.Sprintf("%s_pivot.%s", merged.Name, ext),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// rowLabel is the header of the leftmost column, the display name of
// the first row group.
func (s *ExportServiceImpl) rowLabel(r *report.Report) string {
	if len(r.RowGroups) == 0 {
		return ""
	}
	f, err := s.Registry.Field(r.Section, r.RowGroups[0])
	if err != nil {
		return r.RowGroups[0]
	}
	return f.Display
}

// grid is the flattened table every output format renders: a two-row
// header (outer group labels over leaf labels), one labelled row per
// pivot index entry, and a numeric totals row. Only the flat pivot
// shapes carry an index; hierarchy and summary shapes export as an
// empty grid, which renders the no-data message.
type grid struct {
	RowLabel string
	Outer    []string
	Leaf     []string
	keys     []string
	Rows     []gridRow
	Totals   []float64
	Empty    bool
}

type gridRow struct {
	Label string
	Cells []interface{}
}

func buildGrid(pivot *report.PivotResult, rowLabel string) *grid {
	g := &grid{RowLabel: rowLabel}
	if pivot == nil || len(pivot.Index) == 0 || len(pivot.Table) == 0 {
		g.Empty = true
		return g
	}

	if len(pivot.ColumnHierarchy) > 0 {
		for _, level := range pivot.ColumnHierarchy {
			outer, leaf := level.Level1Display, level.Level2Display
			if level.Level2 == "" {
				// Aggregate pseudo-columns carry a single label.
				leaf = level.Level1Display
			}
			g.Outer = append(g.Outer, outer)
			g.Leaf = append(g.Leaf, leaf)
			g.keys = append(g.keys, level.Key)
		}
	} else {
		for _, col := range pivot.Columns {
			label := compositeDisplay(col)
			g.Outer = append(g.Outer, label)
			g.Leaf = append(g.Leaf, label)
			g.keys = append(g.keys, col)
		}
	}

	g.Totals = make([]float64, len(g.keys))
	for _, idx := range pivot.Index {
		cells := pivot.Table[idx]
		row := gridRow{Label: rowDisplay(cells, idx)}
		for i, key := range g.keys {
			v := cells[key]
			if v == nil {
				v = 0
			}
			row.Cells = append(row.Cells, v)
			if n, ok := numeric(v); ok {
				g.Totals[i] += n
			}
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func rowDisplay(cells map[string]interface{}, idx string) string {
	if d, ok := cells["_display"].(string); ok && d != "" {
		return d
	}
	return compositeDisplay(idx)
}

// compositeDisplay strips the id half off a "display||id" composite.
func compositeDisplay(key string) string {
	if i := strings.LastIndex(key, "||"); i >= 0 {
		return key[:i]
	}
	return key
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// formatCell renders a cell for the text formats. Whole floats print
// without a decimal tail so counts and sums read the same everywhere.
func formatCell(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return "0"
	case int:
		return strconv.Itoa(n)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	default:
		return fmt.Sprintf("%v", n)
	}
}
