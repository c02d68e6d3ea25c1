package report

import (
	"fmt"
	"net/url"

	"crm-reports/internal/features/schema"
)

type ChartSeries struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

type StackedData struct {
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}

// ChartData is the chart projection of one run. Values are record
// counts per label; aggregate values never feed a chart.
type ChartData struct {
	Labels            []string     `json:"labels"`
	Data              []float64    `json:"data"`
	Type              string       `json:"type"`
	LabelField        string       `json:"label_field"`
	Stacked           *StackedData `json:"stacked_data,omitempty"`
	HasMultipleGroups bool         `json:"has_multiple_groups"`
	HasStackedData    bool         `json:"has_stacked_data,omitempty"`
	PrimaryField      string       `json:"primary_field,omitempty"`
	SecondaryField    string       `json:"secondary_field,omitempty"`
	URLs              []string     `json:"urls"`
	Error             string       `json:"error,omitempty"`

	// Chosen fields flow back so a run can persist fallback picks onto
	// the report, the way the detail view does.
	FieldUsed           string `json:"-"`
	StackedFieldUsed    string `json:"-"`
	PersistChartField   bool   `json:"-"`
	PersistStackedField bool   `json:"-"`
}

func sectionURL(section string) string {
	return "/api/records/" + section
}

func drillURL(section, field string, raw interface{}) string {
	value := ""
	if raw != nil {
		value = schema.RawKey(raw)
	}
	return fmt.Sprintf("%s?section=%s&apply_filter=true&field=%s&operator=exact&value=%s",
		sectionURL(section),
		url.QueryEscape(section),
		url.QueryEscape(field),
		url.QueryEscape(value))
}

// labelSet hands out display labels, suffixing repeats with a counter
// so two groups that render the same stay distinguishable.
type labelSet struct {
	counts map[string]int
}

func newLabelSet() *labelSet {
	return &labelSet{counts: map[string]int{}}
}

func (s *labelSet) take(base string) string {
	if n, ok := s.counts[base]; ok {
		s.counts[base] = n + 1
		return fmt.Sprintf("%s (%d)", base, n+1)
	}
	s.counts[base] = 1
	return base
}

// BuildChart projects the run into chart series. Group labels come
// from display values; the numbers are always counts.
func BuildChart(in PivotInput) *ChartData {
	r := in.Report
	chart := &ChartData{
		Labels:     []string{},
		Data:       []float64{},
		Type:       r.ChartType,
		LabelField: "Count",
		URLs:       []string{},
	}

	if len(in.Rows) == 0 {
		return chart
	}

	totalGroups := len(r.RowGroups) + len(r.ColumnGroups)
	chart.HasMultipleGroups = totalGroups >= 2

	if r.ConfigType() == "0_row_0_col" {
		chart.Labels = []string{"Records"}
		chart.Data = []float64{float64(len(in.Rows))}
		chart.LabelField = "Records"
		chart.URLs = []string{sectionURL(r.Section)}
		return chart
	}

	if (r.ChartType == ChartStackedVertical || r.ChartType == ChartStackedHorizontal) && chart.HasMultipleGroups {
		buildStackedChart(in, chart)
		return chart
	}

	buildSingleChart(in, chart)
	return chart
}

func (in PivotInput) hasField(field string) bool {
	if field == "" || len(in.Rows) == 0 {
		return false
	}
	_, ok := in.Rows[0][field]
	return ok
}

func buildSingleChart(in PivotInput, chart *ChartData) {
	r := in.Report

	chartField := ""
	switch {
	case in.hasField(r.ChartField):
		chartField = r.ChartField
	case len(r.RowGroups) > 0 && in.hasField(r.RowGroups[0]):
		chartField = r.RowGroups[0]
		chart.PersistChartField = r.ChartField == ""
	case len(r.ColumnGroups) > 0 && in.hasField(r.ColumnGroups[0]):
		chartField = r.ColumnGroups[0]
		chart.PersistChartField = r.ChartField == ""
	}

	if chartField == "" {
		chart.Labels = []string{"Records"}
		chart.Data = []float64{float64(len(in.Rows))}
		chart.LabelField = "Records"
		chart.URLs = []string{sectionURL(r.Section)}
		return
	}
	chart.FieldUsed = chartField

	labels := newLabelSet()
	for _, g := range groupRows(in.Rows, chartField, allIndices(in.Rows)) {
		info := in.Display.info(chartField, g.raw)
		chart.Labels = append(chart.Labels, labels.take(info.Display))
		chart.Data = append(chart.Data, float64(len(g.idxs)))
		chart.URLs = append(chart.URLs, drillURL(r.Section, chartField, g.raw))
	}
	chart.LabelField = in.labelFor(chartField)
}

func buildStackedChart(in PivotInput, chart *ChartData) {
	r := in.Report

	primary, secondary := "", ""
	if in.hasField(r.ChartField) {
		primary = r.ChartField
		if in.hasField(r.ChartFieldStacked) && r.ChartFieldStacked != primary {
			secondary = r.ChartFieldStacked
		}
	} else if in.hasField(r.ChartFieldStacked) {
		secondary = r.ChartFieldStacked
		for _, f := range r.GroupFields() {
			if f != secondary && in.hasField(f) {
				primary = f
				break
			}
		}
	}

	if primary == "" || secondary == "" {
		switch {
		case len(r.RowGroups) > 0 && len(r.ColumnGroups) > 0:
			if primary == "" {
				primary = r.RowGroups[0]
			}
			if secondary == "" {
				secondary = r.ColumnGroups[0]
			}
		case len(r.RowGroups) >= 2:
			if primary == "" {
				primary = r.RowGroups[0]
			}
			if secondary == "" {
				secondary = r.RowGroups[1]
			}
		case len(r.ColumnGroups) >= 2:
			if primary == "" {
				primary = r.ColumnGroups[0]
			}
			if secondary == "" {
				secondary = r.ColumnGroups[1]
			}
		}
	}

	if !in.hasField(primary) || !in.hasField(secondary) {
		buildSingleChart(in, chart)
		chart.PersistChartField = false
		return
	}

	var crossed []int
	for i, row := range in.Rows {
		if row[primary] != nil && row[secondary] != nil {
			crossed = append(crossed, i)
		}
	}
	if len(crossed) == 0 {
		buildSingleChart(in, chart)
		chart.PersistChartField = false
		return
	}

	chart.FieldUsed = primary
	chart.StackedFieldUsed = secondary
	chart.PersistChartField = r.ChartField == ""
	chart.PersistStackedField = r.ChartFieldStacked == ""

	primaryGroups := groupRows(in.Rows, primary, crossed)
	secondaryGroups := groupRows(in.Rows, secondary, crossed)

	counts := map[string]map[string]int{}
	for _, i := range crossed {
		pk := schema.RawKey(in.Rows[i][primary])
		sk := schema.RawKey(in.Rows[i][secondary])
		if counts[pk] == nil {
			counts[pk] = map[string]int{}
		}
		counts[pk][sk]++
	}

	categoryLabels := newLabelSet()
	categories := make([]string, len(primaryGroups))
	for i, pg := range primaryGroups {
		info := in.Display.info(primary, pg.raw)
		categories[i] = categoryLabels.take(info.Display)
		chart.URLs = append(chart.URLs, drillURL(r.Section, primary, pg.raw))
	}

	seriesLabels := newLabelSet()
	series := make([]ChartSeries, len(secondaryGroups))
	for si, sg := range secondaryGroups {
		info := in.Display.info(secondary, sg.raw)
		data := make([]int, len(primaryGroups))
		for pi, pg := range primaryGroups {
			data[pi] = counts[pg.key][sg.key]
		}
		series[si] = ChartSeries{Name: seriesLabels.take(info.Display), Data: data}
	}

	totals := make([]float64, len(categories))
	for _, s := range series {
		for i, v := range s.Data {
			totals[i] += float64(v)
		}
	}

	chart.Labels = categories
	chart.Data = totals
	chart.Stacked = &StackedData{Categories: categories, Series: series}
	chart.HasStackedData = true
	chart.PrimaryField = primary
	chart.SecondaryField = secondary
	chart.LabelField = fmt.Sprintf("%s by %s", in.labelFor(primary), in.labelFor(secondary))
}
