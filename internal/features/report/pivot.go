package report

import (
	"sort"
	"strconv"

	"crm-reports/internal/features/record"
	"crm-reports/internal/features/schema"
)

// DisplayLookup maps field -> RawKey(value) -> display info. The
// service batches relation lookups before the pivot runs, so shape
// handlers never touch the store.
type DisplayLookup map[string]map[string]schema.DisplayInfo

func (l DisplayLookup) info(field string, raw interface{}) schema.DisplayInfo {
	key := schema.RawKey(raw)
	if byKey, ok := l[field]; ok {
		if info, ok := byKey[key]; ok {
			return info
		}
	}
	if key == "" {
		return schema.DisplayInfo{Display: "Unspecified (-)", ID: nil, Composite: "Unspecified (-)"}
	}
	return schema.DisplayInfo{Display: key, ID: raw, Composite: key}
}

// PivotInput carries everything a pivot build needs, already fetched.
type PivotInput struct {
	Report  *Report
	Rows    []record.RawRecord
	Display DisplayLookup
	Labels  map[string]string // field -> display name for headers
}

func (in PivotInput) labelFor(field string) string {
	if label, ok := in.Labels[field]; ok && label != "" {
		return label
	}
	return field
}

type SimpleAggregate struct {
	Field    string      `json:"field"`
	Value    interface{} `json:"value"`
	Function string      `json:"function"`
}

type AggregateColumn struct {
	Name     string                 `json:"name"`
	Function string                 `json:"function"`
	Field    string                 `json:"field"`
	Value    interface{}            `json:"value,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

type ColumnLevel struct {
	Level1        string `json:"level1"`
	Level1Display string `json:"level1_display"`
	Level2        string `json:"level2"`
	Level2Display string `json:"level2_display"`
	Key           string `json:"key"`
}

type HierarchyItem struct {
	Group   string                 `json:"secondary_group"`
	Display string                 `json:"secondary_group_display"`
	ID      interface{}            `json:"secondary_group_id"`
	Values  map[string]interface{} `json:"values"`
	Total   int                    `json:"total"`
}

type HierarchyGroup struct {
	Group    string          `json:"primary_group"`
	Display  string          `json:"primary_group_display"`
	ID       interface{}     `json:"primary_group_id"`
	Items    []HierarchyItem `json:"items"`
	Subtotal int             `json:"subtotal"`
}

type HierarchicalData struct {
	Groups     []HierarchyGroup `json:"groups"`
	GrandTotal int              `json:"grand_total"`
}

type ThreeLevelItem struct {
	Group           string                 `json:"level3_group"`
	Display         string                 `json:"level3_group_display"`
	ID              interface{}            `json:"level3_group_id"`
	Count           int                    `json:"count"`
	AggregateValues map[string]interface{} `json:"aggregate_values"`
}

type ThreeLevelSubgroup struct {
	Group   string           `json:"level2_group"`
	Display string           `json:"level2_group_display"`
	ID      interface{}      `json:"level2_group_id"`
	Items   []ThreeLevelItem `json:"level3_items"`
	Total   int              `json:"level2_total"`
}

type ThreeLevelGroup struct {
	Group     string               `json:"level1_group"`
	Display   string               `json:"level1_group_display"`
	ID        interface{}          `json:"level1_group_id"`
	Subgroups []ThreeLevelSubgroup `json:"level2_groups"`
	Total     int                  `json:"level1_total"`
}

type ThreeLevelData struct {
	Groups     []ThreeLevelGroup `json:"groups"`
	GrandTotal int               `json:"grand_total"`
}

// PivotResult is the wire shape of one pivot build. Which sections are
// populated depends on the grouping shape.
type PivotResult struct {
	ConfigType       string                            `json:"configuration_type"`
	Index            []string                          `json:"pivot_index"`
	Columns          []string                          `json:"pivot_columns"`
	Table            map[string]map[string]interface{} `json:"pivot_table"`
	ColumnHierarchy  []ColumnLevel                     `json:"column_hierarchy,omitempty"`
	Hierarchical     *HierarchicalData                 `json:"hierarchical_data,omitempty"`
	ThreeLevel       *ThreeLevelData                   `json:"three_level_data,omitempty"`
	Simple           *SimpleAggregate                  `json:"simple_aggregate,omitempty"`
	AggregateColumns []AggregateColumn                 `json:"aggregate_columns"`
	TotalCount       int                               `json:"total_count"`
	TotalAmount      float64                           `json:"total_amount"`
	Error            string                            `json:"error,omitempty"`
}

// BuildPivot folds materialized rows into the table for the report's
// grouping shape. Records whose group value is null fall out of that
// grouping, like they never matched.
func BuildPivot(in PivotInput) *PivotResult {
	r := in.Report
	result := &PivotResult{
		ConfigType:       r.ConfigType(),
		Index:            []string{},
		Columns:          []string{},
		Table:            map[string]map[string]interface{}{},
		AggregateColumns: []AggregateColumn{},
		TotalCount:       len(in.Rows),
	}

	for _, agg := range r.Aggregates {
		if agg.Func == AggSum {
			result.TotalAmount += sumField(in.Rows, allIndices(in.Rows), agg.Field)
		}
	}

	shape, err := ShapeFor(r.RowGroups, r.ColumnGroups)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	switch s := shape.(type) {
	case ShapeSimple:
		buildSimple(in, result)
	case ShapeRowOnly:
		buildRowOnly(in, result, s)
	case ShapeRowCol:
		buildRowCol(in, result, s)
	case ShapeRowCol2:
		buildRowCol2(in, result, s)
	case ShapeHierarchy2:
		buildHierarchy2(in, result, s)
	case ShapeHierarchy2Col:
		buildHierarchy2Col(in, result, s)
	case ShapeHierarchy3:
		buildHierarchy3(in, result, s)
	}
	return result
}

// pivotGroup is one bucket of rows sharing a raw group value.
type pivotGroup struct {
	key  string
	raw  interface{}
	idxs []int
}

func allIndices(rows []record.RawRecord) []int {
	idxs := make([]int, len(rows))
	for i := range rows {
		idxs[i] = i
	}
	return idxs
}

// groupRows buckets the subset by a field's value, dropping rows whose
// value is null, and orders buckets the way a sorted index would:
// numerically when every key parses as a number, lexically otherwise.
func groupRows(rows []record.RawRecord, field string, subset []int) []pivotGroup {
	byKey := map[string]*pivotGroup{}
	var order []string

	for _, i := range subset {
		raw := rows[i][field]
		if raw == nil {
			continue
		}
		key := schema.RawKey(raw)
		g, ok := byKey[key]
		if !ok {
			g = &pivotGroup{key: key, raw: raw}
			byKey[key] = g
			order = append(order, key)
		}
		g.idxs = append(g.idxs, i)
	}

	sort.Slice(order, func(a, b int) bool { return rawKeyLess(order[a], order[b]) })

	groups := make([]pivotGroup, len(order))
	for i, key := range order {
		groups[i] = *byKey[key]
	}
	return groups
}

func rawKeyLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		if fa != fb {
			return fa < fb
		}
		return a < b
	}
	return a < b
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func sumField(rows []record.RawRecord, idxs []int, field string) float64 {
	total := 0.0
	for _, i := range idxs {
		if n, ok := toFloat(rows[i][field]); ok {
			total += n
		}
	}
	return total
}

// aggValue computes one aggregate over a bucket. Null values are
// skipped for sum/avg/min/max; count counts every row; a bucket with
// no usable values yields 0, never null.
func aggValue(rows []record.RawRecord, idxs []int, field, fn string) interface{} {
	switch fn {
	case AggSum:
		return sumField(rows, idxs, field)
	case AggAvg:
		total, n := 0.0, 0
		for _, i := range idxs {
			if v, ok := toFloat(rows[i][field]); ok {
				total += v
				n++
			}
		}
		if n == 0 {
			return 0.0
		}
		return total / float64(n)
	case AggMin:
		best, have := 0.0, false
		for _, i := range idxs {
			if v, ok := toFloat(rows[i][field]); ok {
				if !have || v < best {
					best, have = v, true
				}
			}
		}
		return best
	case AggMax:
		best, have := 0.0, false
		for _, i := range idxs {
			if v, ok := toFloat(rows[i][field]); ok {
				if !have || v > best {
					best, have = v, true
				}
			}
		}
		return best
	default:
		// count, and anything unrecognized that survived normalization
		return len(idxs)
	}
}

func buildSimple(in PivotInput, result *PivotResult) {
	r := in.Report

	if len(r.Aggregates) > 0 {
		if len(in.Rows) > 0 {
			idxs := allIndices(in.Rows)
			for _, agg := range r.Aggregates {
				if agg.Field == "" {
					continue
				}
				result.AggregateColumns = append(result.AggregateColumns, AggregateColumn{
					Name:     agg.ColumnName(in.labelFor(agg.Field)),
					Function: agg.Func,
					Field:    agg.Field,
					Value:    aggValue(in.Rows, idxs, agg.Field, agg.Func),
				})
			}
		}
		if len(result.AggregateColumns) > 0 {
			first := result.AggregateColumns[0]
			result.Simple = &SimpleAggregate{Field: first.Field, Value: first.Value, Function: first.Function}
			return
		}
	}
	result.Simple = &SimpleAggregate{Field: "Records", Value: len(in.Rows), Function: AggCount}
}

func buildRowOnly(in PivotInput, result *PivotResult, shape ShapeRowOnly) {
	r := in.Report
	result.Columns = []string{"Count"}
	if len(in.Rows) == 0 {
		return
	}

	rowField := shape.Row
	groups := groupRows(in.Rows, rowField, allIndices(in.Rows))

	aggCols := make([]AggregateColumn, 0, len(r.Aggregates))
	for _, agg := range r.Aggregates {
		name := agg.ColumnName(in.labelFor(agg.Field))
		result.Columns = append(result.Columns, name)

		data := make(map[string]interface{}, len(groups))
		for _, g := range groups {
			data[g.key] = aggValue(in.Rows, g.idxs, agg.Field, agg.Func)
		}
		aggCols = append(aggCols, AggregateColumn{Name: name, Function: agg.Func, Field: agg.Field, Data: data})
	}

	for _, g := range groups {
		info := in.Display.info(rowField, g.raw)
		cell := map[string]interface{}{
			"Count":    len(g.idxs),
			"_display": info.Display,
			"_id":      info.ID,
		}
		for _, ac := range aggCols {
			cell[ac.Name] = ac.Data[g.key]
		}
		result.Table[info.Composite] = cell
		result.Index = append(result.Index, info.Composite)
	}
	result.AggregateColumns = aggCols
}

func buildRowCol(in PivotInput, result *PivotResult, shape ShapeRowCol) {
	r := in.Report
	if len(in.Rows) == 0 {
		return
	}

	rowField := shape.Row
	colField := shape.Col

	// Cross-tab counts cover only rows where both group values exist,
	// matching how a pivot drops null keys on both axes.
	var crossed []int
	for i, row := range in.Rows {
		if row[rowField] != nil && row[colField] != nil {
			crossed = append(crossed, i)
		}
	}

	rowGroups := groupRows(in.Rows, rowField, crossed)
	colGroups := groupRows(in.Rows, colField, crossed)

	counts := map[string]map[string]int{}
	for _, i := range crossed {
		rk := schema.RawKey(in.Rows[i][rowField])
		ck := schema.RawKey(in.Rows[i][colField])
		if counts[rk] == nil {
			counts[rk] = map[string]int{}
		}
		counts[rk][ck]++
	}

	seenCols := map[string]bool{}
	for _, rg := range rowGroups {
		info := in.Display.info(rowField, rg.raw)
		cell := map[string]interface{}{
			"total":    0,
			"_display": info.Display,
			"_id":      info.ID,
		}
		for _, cg := range colGroups {
			colInfo := in.Display.info(colField, cg.raw)
			if !seenCols[colInfo.Composite] {
				seenCols[colInfo.Composite] = true
				result.Columns = append(result.Columns, colInfo.Composite)
			}
			value := counts[rg.key][cg.key]
			cell[colInfo.Composite] = value
			cell["total"] = cell["total"].(int) + value
		}
		result.Table[info.Composite] = cell
		result.Index = append(result.Index, info.Composite)
	}

	// Aggregates group over every row with a row value, including rows
	// the cross-tab dropped for a missing column value.
	aggGroups := groupRows(in.Rows, rowField, allIndices(in.Rows))
	for _, agg := range r.Aggregates {
		name := agg.ColumnName(in.labelFor(agg.Field))
		data := map[string]interface{}{}
		for _, g := range aggGroups {
			data[g.key] = aggValue(in.Rows, g.idxs, agg.Field, agg.Func)
		}
		for _, rg := range rowGroups {
			info := in.Display.info(rowField, rg.raw)
			value := data[rg.key]
			if value == nil {
				value = 0
			}
			result.Table[info.Composite][name] = value
		}
		result.Columns = append(result.Columns, name)
		result.AggregateColumns = append(result.AggregateColumns, AggregateColumn{Name: name, Function: agg.Func, Field: agg.Field})
	}
}

func buildRowCol2(in PivotInput, result *PivotResult, shape ShapeRowCol2) {
	r := in.Report
	result.ColumnHierarchy = []ColumnLevel{}
	if len(in.Rows) == 0 {
		return
	}

	rowField := shape.Row
	colField1 := shape.Col1
	colField2 := shape.Col2

	var crossed []int
	for i, row := range in.Rows {
		if row[rowField] != nil && row[colField1] != nil && row[colField2] != nil {
			crossed = append(crossed, i)
		}
	}

	type colPair struct {
		key1, key2 string
		raw1, raw2 interface{}
	}
	pairSeen := map[string]bool{}
	var pairs []colPair
	counts := map[string]map[string]int{}

	for _, i := range crossed {
		row := in.Rows[i]
		rk := schema.RawKey(row[rowField])
		k1 := schema.RawKey(row[colField1])
		k2 := schema.RawKey(row[colField2])
		pairKey := k1 + "\x00" + k2
		if !pairSeen[pairKey] {
			pairSeen[pairKey] = true
			pairs = append(pairs, colPair{key1: k1, key2: k2, raw1: row[colField1], raw2: row[colField2]})
		}
		if counts[rk] == nil {
			counts[rk] = map[string]int{}
		}
		counts[rk][pairKey]++
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].key1 != pairs[b].key1 {
			return rawKeyLess(pairs[a].key1, pairs[b].key1)
		}
		return rawKeyLess(pairs[a].key2, pairs[b].key2)
	})

	pairColumns := make([]string, len(pairs))
	for i, p := range pairs {
		info1 := in.Display.info(colField1, p.raw1)
		info2 := in.Display.info(colField2, p.raw2)
		key := info1.Composite + "|" + info2.Composite
		pairColumns[i] = key
		result.Columns = append(result.Columns, key)
		result.ColumnHierarchy = append(result.ColumnHierarchy, ColumnLevel{
			Level1:        info1.Composite,
			Level1Display: info1.Display,
			Level2:        info2.Composite,
			Level2Display: info2.Display,
			Key:           key,
		})
	}

	rowGroups := groupRows(in.Rows, rowField, crossed)
	for _, rg := range rowGroups {
		info := in.Display.info(rowField, rg.raw)
		cell := map[string]interface{}{
			"total":    0,
			"_display": info.Display,
			"_id":      info.ID,
		}
		for i, p := range pairs {
			value := counts[rg.key][p.key1+"\x00"+p.key2]
			cell[pairColumns[i]] = value
			cell["total"] = cell["total"].(int) + value
		}
		result.Table[info.Composite] = cell
		result.Index = append(result.Index, info.Composite)
	}

	aggGroups := groupRows(in.Rows, rowField, allIndices(in.Rows))
	for _, agg := range r.Aggregates {
		name := agg.ColumnName(in.labelFor(agg.Field))
		data := map[string]interface{}{}
		for _, g := range aggGroups {
			data[g.key] = aggValue(in.Rows, g.idxs, agg.Field, agg.Func)
		}
		for _, rg := range rowGroups {
			info := in.Display.info(rowField, rg.raw)
			value := data[rg.key]
			if value == nil {
				value = 0
			}
			result.Table[info.Composite][name] = value
		}
		result.Columns = append(result.Columns, name)
		result.ColumnHierarchy = append(result.ColumnHierarchy, ColumnLevel{
			Level1:        name,
			Level1Display: name,
			Key:           name,
		})
		result.AggregateColumns = append(result.AggregateColumns, AggregateColumn{Name: name, Function: agg.Func, Field: agg.Field})
	}
}

func buildHierarchy2(in PivotInput, result *PivotResult, shape ShapeHierarchy2) {
	r := in.Report
	result.Hierarchical = &HierarchicalData{Groups: []HierarchyGroup{}}
	result.Columns = []string{"Count"}
	if len(in.Rows) == 0 {
		return
	}

	primaryField := shape.Primary
	secondaryField := shape.Secondary

	aggNames := make([]string, len(r.Aggregates))
	for i, agg := range r.Aggregates {
		aggNames[i] = agg.ColumnName(in.labelFor(agg.Field))
		result.Columns = append(result.Columns, aggNames[i])
		result.AggregateColumns = append(result.AggregateColumns, AggregateColumn{
			Name: aggNames[i], Function: agg.Func, Field: agg.Field,
		})
	}

	for _, pg := range groupRows(in.Rows, primaryField, allIndices(in.Rows)) {
		pInfo := in.Display.info(primaryField, pg.raw)
		group := HierarchyGroup{
			Group:   pInfo.Composite,
			Display: pInfo.Display,
			ID:      pInfo.ID,
			Items:   []HierarchyItem{},
		}

		for _, sg := range groupRows(in.Rows, secondaryField, pg.idxs) {
			sInfo := in.Display.info(secondaryField, sg.raw)
			item := HierarchyItem{
				Group:   sInfo.Composite,
				Display: sInfo.Display,
				ID:      sInfo.ID,
				Values:  map[string]interface{}{"Count": len(sg.idxs)},
				Total:   len(sg.idxs),
			}
			for i, agg := range r.Aggregates {
				item.Values[aggNames[i]] = aggValue(in.Rows, sg.idxs, agg.Field, agg.Func)
			}
			group.Items = append(group.Items, item)
			group.Subtotal += len(sg.idxs)
		}

		result.Hierarchical.Groups = append(result.Hierarchical.Groups, group)
		result.Hierarchical.GrandTotal += group.Subtotal
	}
}

func buildHierarchy2Col(in PivotInput, result *PivotResult, shape ShapeHierarchy2Col) {
	r := in.Report
	result.Hierarchical = &HierarchicalData{Groups: []HierarchyGroup{}}
	if len(in.Rows) == 0 {
		return
	}

	primaryField := shape.Primary
	secondaryField := shape.Secondary
	colField := shape.Col

	// Column headers keep first-appearance order rather than the sorted
	// order the other shapes use.
	type colValue struct {
		key string
		raw interface{}
	}
	var uniqueCols []colValue
	colSeen := map[string]bool{}
	for _, row := range in.Rows {
		raw := row[colField]
		if raw == nil {
			continue
		}
		key := schema.RawKey(raw)
		if !colSeen[key] {
			colSeen[key] = true
			uniqueCols = append(uniqueCols, colValue{key: key, raw: raw})
		}
	}

	colComposites := make([]string, len(uniqueCols))
	for i, cv := range uniqueCols {
		colComposites[i] = in.Display.info(colField, cv.raw).Composite
		result.Columns = append(result.Columns, colComposites[i])
	}

	aggNames := make([]string, len(r.Aggregates))
	for i, agg := range r.Aggregates {
		aggNames[i] = agg.ColumnName(in.labelFor(agg.Field))
		result.Columns = append(result.Columns, aggNames[i])
		result.AggregateColumns = append(result.AggregateColumns, AggregateColumn{
			Name: aggNames[i], Function: agg.Func, Field: agg.Field,
		})
	}

	for _, pg := range groupRows(in.Rows, primaryField, allIndices(in.Rows)) {
		pInfo := in.Display.info(primaryField, pg.raw)
		group := HierarchyGroup{
			Group:   pInfo.Composite,
			Display: pInfo.Display,
			ID:      pInfo.ID,
			Items:   []HierarchyItem{},
		}

		for _, sg := range groupRows(in.Rows, secondaryField, pg.idxs) {
			sInfo := in.Display.info(secondaryField, sg.raw)
			item := HierarchyItem{
				Group:   sInfo.Composite,
				Display: sInfo.Display,
				ID:      sInfo.ID,
				Values:  map[string]interface{}{},
			}

			for i, cv := range uniqueCols {
				n := 0
				for _, idx := range sg.idxs {
					raw := in.Rows[idx][colField]
					if raw != nil && schema.RawKey(raw) == cv.key {
						n++
					}
				}
				item.Values[colComposites[i]] = n
				item.Total += n
			}

			for i, agg := range r.Aggregates {
				item.Values[aggNames[i]] = aggValue(in.Rows, sg.idxs, agg.Field, agg.Func)
			}

			group.Items = append(group.Items, item)
			group.Subtotal += item.Total
		}

		result.Hierarchical.Groups = append(result.Hierarchical.Groups, group)
		result.Hierarchical.GrandTotal += group.Subtotal
	}
}

func buildHierarchy3(in PivotInput, result *PivotResult, shape ShapeHierarchy3) {
	r := in.Report
	result.ThreeLevel = &ThreeLevelData{Groups: []ThreeLevelGroup{}}
	if len(in.Rows) == 0 {
		return
	}

	level1Field := shape.Level1
	level2Field := shape.Level2
	level3Field := shape.Level3

	aggNames := make([]string, len(r.Aggregates))
	for i, agg := range r.Aggregates {
		aggNames[i] = agg.ColumnName(in.labelFor(agg.Field))
		result.AggregateColumns = append(result.AggregateColumns, AggregateColumn{
			Name: aggNames[i], Function: agg.Func, Field: agg.Field,
		})
	}

	for _, g1 := range groupRows(in.Rows, level1Field, allIndices(in.Rows)) {
		info1 := in.Display.info(level1Field, g1.raw)
		top := ThreeLevelGroup{
			Group:     info1.Composite,
			Display:   info1.Display,
			ID:        info1.ID,
			Subgroups: []ThreeLevelSubgroup{},
		}

		for _, g2 := range groupRows(in.Rows, level2Field, g1.idxs) {
			info2 := in.Display.info(level2Field, g2.raw)
			sub := ThreeLevelSubgroup{
				Group:   info2.Composite,
				Display: info2.Display,
				ID:      info2.ID,
				Items:   []ThreeLevelItem{},
			}

			for _, g3 := range groupRows(in.Rows, level3Field, g2.idxs) {
				info3 := in.Display.info(level3Field, g3.raw)
				item := ThreeLevelItem{
					Group:           info3.Composite,
					Display:         info3.Display,
					ID:              info3.ID,
					Count:           len(g3.idxs),
					AggregateValues: map[string]interface{}{},
				}
				for i, agg := range r.Aggregates {
					item.AggregateValues[aggNames[i]] = aggValue(in.Rows, g3.idxs, agg.Field, agg.Func)
				}
				sub.Items = append(sub.Items, item)
				sub.Total += item.Count
			}

			top.Subgroups = append(top.Subgroups, sub)
			top.Total += sub.Total
		}

		result.ThreeLevel.Groups = append(result.ThreeLevel.Groups, top)
		result.ThreeLevel.GrandTotal += top.Total
	}
}
