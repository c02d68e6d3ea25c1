package draft

import (
	"time"

	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Draft is one user's unsaved working copy of a report configuration.
// It is a sparse overlay: only the aspects an edit has touched are
// stored, and nil fields fall through to the saved report when the
// draft is applied. A pointer to an empty slice is a real override
// (the user cleared that aspect), which is why the fields are pointers
// rather than plain slices.
type Draft struct {
	ID                primitive.ObjectID      `json:"id" bson:"_id,omitempty"`
	TenantID          primitive.ObjectID      `json:"tenant_id" bson:"tenant_id"`
	ReportID          primitive.ObjectID      `json:"report_id" bson:"report_id"`
	UserID            string                  `json:"user_id" bson:"user_id"`
	SelectedColumns   *[]string               `json:"selected_columns,omitempty" bson:"selected_columns,omitempty"`
	RowGroups         *[]string               `json:"row_groups,omitempty" bson:"row_groups,omitempty"`
	ColumnGroups      *[]string               `json:"column_groups,omitempty" bson:"column_groups,omitempty"`
	Aggregates        *[]report.AggregateSpec `json:"aggregate_columns,omitempty" bson:"aggregate_columns,omitempty"`
	Filters           *[]record.FilterSpec    `json:"filters,omitempty" bson:"filters,omitempty"`
	ChartType         *string                 `json:"chart_type,omitempty" bson:"chart_type,omitempty"`
	ChartField        *string                 `json:"chart_field,omitempty" bson:"chart_field,omitempty"`
	ChartFieldStacked *string                 `json:"chart_field_stacked,omitempty" bson:"chart_field_stacked,omitempty"`
	Version           int64                   `json:"version" bson:"version"`
	CreatedAt         time.Time               `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at" bson:"updated_at"`
	ExpiresAt         time.Time               `json:"expires_at" bson:"expires_at"`
}

// ApplyTo lays the overlay over a copy of the saved report. The input
// is never mutated.
func (d *Draft) ApplyTo(r *report.Report) *report.Report {
	merged := *r
	if d.SelectedColumns != nil {
		merged.SelectedColumns = *d.SelectedColumns
	}
	if d.RowGroups != nil {
		merged.RowGroups = *d.RowGroups
	}
	if d.ColumnGroups != nil {
		merged.ColumnGroups = *d.ColumnGroups
	}
	if d.Aggregates != nil {
		merged.Aggregates = *d.Aggregates
	}
	if d.Filters != nil {
		merged.Filters = *d.Filters
	}
	if d.ChartType != nil {
		merged.ChartType = *d.ChartType
	}
	if d.ChartField != nil {
		merged.ChartField = *d.ChartField
	}
	if d.ChartFieldStacked != nil {
		merged.ChartFieldStacked = *d.ChartFieldStacked
	}
	return &merged
}

// HasChanges reports whether any aspect has been overridden.
func (d *Draft) HasChanges() bool {
	return d.SelectedColumns != nil ||
		d.RowGroups != nil ||
		d.ColumnGroups != nil ||
		d.Aggregates != nil ||
		d.Filters != nil ||
		d.ChartType != nil ||
		d.ChartField != nil ||
		d.ChartFieldStacked != nil
}

// The accessors below answer "what does this aspect currently look
// like" for a mutation: the draft's override when present, the saved
// report's value otherwise. Slices come back as copies so mutations
// never alias the saved report's backing arrays.

func (d *Draft) columns(r *report.Report) []string {
	if d.SelectedColumns != nil {
		return append([]string{}, *d.SelectedColumns...)
	}
	return append([]string{}, r.SelectedColumns...)
}

func (d *Draft) rowGroups(r *report.Report) []string {
	if d.RowGroups != nil {
		return append([]string{}, *d.RowGroups...)
	}
	return append([]string{}, r.RowGroups...)
}

func (d *Draft) columnGroups(r *report.Report) []string {
	if d.ColumnGroups != nil {
		return append([]string{}, *d.ColumnGroups...)
	}
	return append([]string{}, r.ColumnGroups...)
}

func (d *Draft) aggregates(r *report.Report) []report.AggregateSpec {
	if d.Aggregates != nil {
		return append([]report.AggregateSpec{}, *d.Aggregates...)
	}
	return append([]report.AggregateSpec{}, r.Aggregates...)
}

func (d *Draft) filters(r *report.Report) []record.FilterSpec {
	if d.Filters != nil {
		return append([]record.FilterSpec{}, *d.Filters...)
	}
	return append([]record.FilterSpec{}, r.Filters...)
}

func (d *Draft) chartType(r *report.Report) string {
	if d.ChartType != nil {
		return *d.ChartType
	}
	return r.ChartType
}

func (d *Draft) chartField(r *report.Report) string {
	if d.ChartField != nil {
		return *d.ChartField
	}
	return r.ChartField
}

func (d *Draft) chartFieldStacked(r *report.Report) string {
	if d.ChartFieldStacked != nil {
		return *d.ChartFieldStacked
	}
	return r.ChartFieldStacked
}

// filterKey is the handle mutations address a filter by. Explicit keys
// win; specs without one answer to their field name.
func filterKey(spec record.FilterSpec) string {
	if spec.Key != "" {
		return spec.Key
	}
	return spec.Field
}
