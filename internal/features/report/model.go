package report

import (
	"fmt"
	"time"

	"crm-reports/internal/features/record"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ChartColumn            = "column"
	ChartBar               = "bar"
	ChartLine              = "line"
	ChartPie               = "pie"
	ChartDonut             = "donut"
	ChartFunnel            = "funnel"
	ChartStackedVertical   = "stacked_vertical"
	ChartStackedHorizontal = "stacked_horizontal"
	ChartScatter           = "scatter"
)

var validChartTypes = map[string]bool{
	ChartColumn:            true,
	ChartBar:               true,
	ChartLine:              true,
	ChartPie:               true,
	ChartDonut:             true,
	ChartFunnel:            true,
	ChartStackedVertical:   true,
	ChartStackedHorizontal: true,
	ChartScatter:           true,
}

// ValidChartType reports whether t is a renderable chart type.
func ValidChartType(t string) bool {
	return validChartTypes[t]
}

// Grouping caps enforced on saves and on draft edits.
const (
	MaxRowGroups    = 3
	MaxColumnGroups = 2
)

const (
	AggSum   = "sum"
	AggAvg   = "avg"
	AggCount = "count"
	AggMax   = "max"
	AggMin   = "min"
)

// aggFuncCycle is the toggle order when an aggregate is added again
// for a field that already has one.
var aggFuncCycle = []string{AggSum, AggAvg, AggCount, AggMax, AggMin}

var aggFuncTitles = map[string]string{
	AggSum:   "Sum",
	AggAvg:   "Avg",
	AggCount: "Count",
	AggMax:   "Max",
	AggMin:   "Min",
}

// AggregateSpec is one aggregate column request on a report.
type AggregateSpec struct {
	Field string `json:"field" bson:"field"`
	Func  string `json:"aggfunc" bson:"aggfunc"`
}

// Normalize maps an invalid or missing function to sum. Applied on
// every write path so stored configs always carry a known function.
func (a AggregateSpec) Normalize() AggregateSpec {
	if _, ok := aggFuncTitles[a.Func]; !ok {
		a.Func = AggSum
	}
	return a
}

// ColumnName builds the rendered header, e.g. "Sum of Amount".
func (a AggregateSpec) ColumnName(fieldDisplay string) string {
	title := aggFuncTitles[a.Func]
	if title == "" {
		title = aggFuncTitles[AggSum]
	}
	return fmt.Sprintf("%s of %s", title, fieldDisplay)
}

// Report is a saved pivot report configuration over one section.
type Report struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	TenantID          primitive.ObjectID  `json:"tenant_id" bson:"tenant_id"`
	Name              string              `json:"name" bson:"name"`
	Section           string              `json:"section" bson:"section"`
	SelectedColumns   []string            `json:"selected_columns" bson:"selected_columns"`
	RowGroups         []string            `json:"row_groups" bson:"row_groups"`
	ColumnGroups      []string            `json:"column_groups" bson:"column_groups"`
	Aggregates        []AggregateSpec     `json:"aggregate_columns" bson:"aggregate_columns"`
	Filters           []record.FilterSpec `json:"filters" bson:"filters"`
	ChartType         string              `json:"chart_type" bson:"chart_type"`
	ChartField        string              `json:"chart_field" bson:"chart_field"`
	ChartFieldStacked string              `json:"chart_field_stacked" bson:"chart_field_stacked"`
	FolderID          *primitive.ObjectID `json:"folder_id,omitempty" bson:"folder_id,omitempty"`
	IsFavourite       bool                `json:"is_favourite" bson:"is_favourite"`
	Owner             string              `json:"owner" bson:"owner"`
	SharedWith        []string            `json:"shared_with,omitempty" bson:"shared_with,omitempty"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`
	Deleted           bool                `json:"-" bson:"deleted"`
	DeletedAt         *time.Time          `json:"-" bson:"deleted_at,omitempty"`
	DeletedBy         string              `json:"-" bson:"deleted_by,omitempty"`
}

// ConfigType names the grouping shape, e.g. "1_row_2_col". Whether a
// shape is buildable is ShapeFor's call, not a property of the name.
func (r *Report) ConfigType() string {
	return fmt.Sprintf("%d_row_%d_col", len(r.RowGroups), len(r.ColumnGroups))
}

// FieldUnion lists every field the run needs fetched, first occurrence
// wins: selected columns, row groups, column groups, aggregate fields.
func (r *Report) FieldUnion() []string {
	var fields []string
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		fields = append(fields, name)
	}

	for _, f := range r.SelectedColumns {
		add(f)
	}
	for _, f := range r.RowGroups {
		add(f)
	}
	for _, f := range r.ColumnGroups {
		add(f)
	}
	for _, a := range r.Aggregates {
		add(a.Field)
	}
	return fields
}

// GroupFields lists row groups then column groups.
func (r *Report) GroupFields() []string {
	out := make([]string, 0, len(r.RowGroups)+len(r.ColumnGroups))
	out = append(out, r.RowGroups...)
	out = append(out, r.ColumnGroups...)
	return out
}

// NextAggFunc picks the function for a newly toggled aggregate,
// stepping through the cycle by how many aggregates already target the
// field. Once every function is present another toggle is a no-op and
// the second return is false.
func NextAggFunc(existing []AggregateSpec, field string) (string, bool) {
	n := 0
	for _, a := range existing {
		if a.Field == field {
			n++
		}
	}
	if n >= len(aggFuncCycle) {
		return "", false
	}
	return aggFuncCycle[n], true
}
