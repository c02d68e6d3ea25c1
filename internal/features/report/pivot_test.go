package report

import (
	"reflect"
	"testing"

	"crm-reports/internal/features/record"
)

func statusLookup() DisplayLookup {
	return DisplayLookup{
		"lead_status": {
			"new": {Display: "New", ID: "ls1", Composite: "New||ls1"},
			"won": {Display: "Won", ID: "ls2", Composite: "Won||ls2"},
		},
	}
}

func TestBuildPivotSimpleCountOnly(t *testing.T) {
	rows := []record.RawRecord{
		{"amount": 100.0},
		{"amount": 200.0},
		{"amount": nil},
	}
	res := BuildPivot(PivotInput{Report: &Report{Section: "leads"}, Rows: rows})

	if res.ConfigType != "0_row_0_col" {
		t.Errorf("ConfigType = %q, want 0_row_0_col", res.ConfigType)
	}
	if res.Simple == nil {
		t.Fatal("Simple is nil")
	}
	if res.Simple.Field != "Records" || res.Simple.Value != 3 || res.Simple.Function != AggCount {
		t.Errorf("Simple = %+v, want Records/3/count", res.Simple)
	}
	if res.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", res.TotalCount)
	}
	if res.TotalAmount != 0 {
		t.Errorf("TotalAmount = %v, want 0", res.TotalAmount)
	}
}

func TestBuildPivotSimpleAggregates(t *testing.T) {
	rows := []record.RawRecord{
		{"amount": 100.0},
		{"amount": 200.0},
		{"amount": nil},
	}
	r := &Report{
		Section: "leads",
		Aggregates: []AggregateSpec{
			{Field: "amount", Func: AggSum},
			{Field: "amount", Func: AggAvg},
		},
	}
	res := BuildPivot(PivotInput{Report: r, Rows: rows, Labels: map[string]string{"amount": "Amount"}})

	if len(res.AggregateColumns) != 2 {
		t.Fatalf("AggregateColumns len = %d, want 2", len(res.AggregateColumns))
	}
	if res.AggregateColumns[0].Name != "Sum of Amount" || res.AggregateColumns[0].Value != 300.0 {
		t.Errorf("sum column = %+v, want Sum of Amount/300", res.AggregateColumns[0])
	}
	if res.AggregateColumns[1].Name != "Avg of Amount" || res.AggregateColumns[1].Value != 150.0 {
		t.Errorf("avg column = %+v, want Avg of Amount/150", res.AggregateColumns[1])
	}
	if res.Simple == nil || res.Simple.Field != "amount" || res.Simple.Value != 300.0 || res.Simple.Function != AggSum {
		t.Errorf("Simple = %+v, want amount/300/sum", res.Simple)
	}
	if res.TotalAmount != 300.0 {
		t.Errorf("TotalAmount = %v, want 300", res.TotalAmount)
	}
}

func TestBuildPivotSimpleEmptyRows(t *testing.T) {
	r := &Report{Section: "leads", Aggregates: []AggregateSpec{{Field: "amount", Func: AggSum}}}
	res := BuildPivot(PivotInput{Report: r, Rows: nil})

	if res.Simple == nil || res.Simple.Field != "Records" || res.Simple.Value != 0 {
		t.Errorf("Simple = %+v, want Records/0 fallback", res.Simple)
	}
	if len(res.AggregateColumns) != 0 {
		t.Errorf("AggregateColumns = %v, want empty", res.AggregateColumns)
	}
}

func TestBuildPivotRowOnly(t *testing.T) {
	rows := []record.RawRecord{
		{"lead_status": "won", "amount": 200.0},
		{"lead_status": "new", "amount": 100.0},
		{"lead_status": "new", "amount": 50.0},
		{"lead_status": nil, "amount": 999.0},
	}
	r := &Report{
		Section:    "leads",
		RowGroups:  []string{"lead_status"},
		Aggregates: []AggregateSpec{{Field: "amount", Func: AggSum}},
	}
	res := BuildPivot(PivotInput{
		Report:  r,
		Rows:    rows,
		Display: statusLookup(),
		Labels:  map[string]string{"amount": "Amount"},
	})

	wantIndex := []string{"New||ls1", "Won||ls2"}
	if !reflect.DeepEqual(res.Index, wantIndex) {
		t.Errorf("Index = %v, want %v", res.Index, wantIndex)
	}
	wantColumns := []string{"Count", "Sum of Amount"}
	if !reflect.DeepEqual(res.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", res.Columns, wantColumns)
	}

	newCell := res.Table["New||ls1"]
	if newCell == nil {
		t.Fatal("missing cell for New||ls1")
	}
	if newCell["Count"] != 2 {
		t.Errorf("New count = %v, want 2", newCell["Count"])
	}
	if newCell["Sum of Amount"] != 150.0 {
		t.Errorf("New sum = %v, want 150", newCell["Sum of Amount"])
	}
	if newCell["_display"] != "New" || newCell["_id"] != "ls1" {
		t.Errorf("New metadata = %v/%v, want New/ls1", newCell["_display"], newCell["_id"])
	}

	wonCell := res.Table["Won||ls2"]
	if wonCell["Count"] != 1 || wonCell["Sum of Amount"] != 200.0 {
		t.Errorf("Won cell = %v, want count 1 sum 200", wonCell)
	}

	// The record with no status falls out of the grouping but still
	// counts toward run totals.
	if res.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4", res.TotalCount)
	}
	if res.TotalAmount != 1349.0 {
		t.Errorf("TotalAmount = %v, want 1349", res.TotalAmount)
	}

	if len(res.AggregateColumns) != 1 {
		t.Fatalf("AggregateColumns len = %d, want 1", len(res.AggregateColumns))
	}
	wantData := map[string]interface{}{"new": 150.0, "won": 200.0}
	if !reflect.DeepEqual(res.AggregateColumns[0].Data, wantData) {
		t.Errorf("aggregate data = %v, want %v", res.AggregateColumns[0].Data, wantData)
	}
}

func TestBuildPivotRowOnlyEmptyRows(t *testing.T) {
	r := &Report{Section: "leads", RowGroups: []string{"lead_status"}}
	res := BuildPivot(PivotInput{Report: r, Rows: nil})

	if len(res.Index) != 0 || len(res.Table) != 0 {
		t.Errorf("Index/Table = %v/%v, want empty", res.Index, res.Table)
	}
	if !reflect.DeepEqual(res.Columns, []string{"Count"}) {
		t.Errorf("Columns = %v, want [Count]", res.Columns)
	}
}

func TestBuildPivotRowOnlyNumericOrder(t *testing.T) {
	rows := []record.RawRecord{
		{"score": 100.0},
		{"score": 9.0},
		{"score": 10.0},
	}
	r := &Report{Section: "leads", RowGroups: []string{"score"}}
	res := BuildPivot(PivotInput{Report: r, Rows: rows})

	want := []string{"9", "10", "100"}
	if !reflect.DeepEqual(res.Index, want) {
		t.Errorf("Index = %v, want numeric order %v", res.Index, want)
	}
}

func TestBuildPivotRowOnlyPlainValues(t *testing.T) {
	// Plain text groups have no display lookup; the raw value serves
	// as key and label both.
	rows := []record.RawRecord{
		{"status": "new", "amount": 100.0},
		{"status": "new", "amount": 50.0},
		{"status": "won", "amount": 200.0},
	}
	r := &Report{
		Section:    "leads",
		RowGroups:  []string{"status"},
		Aggregates: []AggregateSpec{{Field: "amount", Func: AggSum}},
	}
	res := BuildPivot(PivotInput{Report: r, Rows: rows})

	if want := []string{"new", "won"}; !reflect.DeepEqual(res.Index, want) {
		t.Errorf("Index = %v, want %v", res.Index, want)
	}
	if len(res.AggregateColumns) != 1 {
		t.Fatalf("AggregateColumns len = %d, want 1", len(res.AggregateColumns))
	}
	wantData := map[string]interface{}{"new": 150.0, "won": 200.0}
	if !reflect.DeepEqual(res.AggregateColumns[0].Data, wantData) {
		t.Errorf("Data = %v, want %v", res.AggregateColumns[0].Data, wantData)
	}
	if res.TotalAmount != 350.0 {
		t.Errorf("TotalAmount = %v, want 350", res.TotalAmount)
	}
	if res.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", res.TotalCount)
	}
}

func TestBuildPivotRowColDropsNullColumnRows(t *testing.T) {
	rows := []record.RawRecord{
		{"lead_status": "new", "city": "Austin", "amount": 100.0},
		{"lead_status": "new", "city": nil, "amount": 50.0},
		{"lead_status": "won", "city": "Boston", "amount": 200.0},
	}
	r := &Report{
		Section:      "leads",
		RowGroups:    []string{"lead_status"},
		ColumnGroups: []string{"city"},
		Aggregates:   []AggregateSpec{{Field: "amount", Func: AggSum}},
	}
	res := BuildPivot(PivotInput{
		Report:  r,
		Rows:    rows,
		Display: statusLookup(),
		Labels:  map[string]string{"amount": "Amount"},
	})

	wantColumns := []string{"Austin", "Boston", "Sum of Amount"}
	if !reflect.DeepEqual(res.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", res.Columns, wantColumns)
	}

	newCell := res.Table["New||ls1"]
	if newCell == nil {
		t.Fatal("missing cell for New||ls1")
	}
	// Cross-tab counts skip the record with no city.
	if newCell["Austin"] != 1 || newCell["Boston"] != 0 || newCell["total"] != 1 {
		t.Errorf("New cell counts = %v, want Austin 1 Boston 0 total 1", newCell)
	}
	// The aggregate still covers it.
	if newCell["Sum of Amount"] != 150.0 {
		t.Errorf("New sum = %v, want 150", newCell["Sum of Amount"])
	}

	wonCell := res.Table["Won||ls2"]
	if wonCell["Austin"] != 0 || wonCell["Boston"] != 1 || wonCell["Sum of Amount"] != 200.0 {
		t.Errorf("Won cell = %v, want Boston 1 sum 200", wonCell)
	}
}

func TestBuildPivotRowColUniquePairs(t *testing.T) {
	// No two records share a (status, city) pair, so every populated
	// cell is exactly 1 and the missing combination is 0.
	rows := []record.RawRecord{
		{"lead_status": "new", "city": "Austin"},
		{"lead_status": "new", "city": "Boston"},
		{"lead_status": "new", "city": "Dallas"},
		{"lead_status": "won", "city": "Austin"},
		{"lead_status": "won", "city": "Boston"},
	}
	r := &Report{
		Section:      "leads",
		RowGroups:    []string{"lead_status"},
		ColumnGroups: []string{"city"},
	}
	res := BuildPivot(PivotInput{Report: r, Rows: rows, Display: statusLookup()})

	if res.ConfigType != "1_row_1_col" {
		t.Errorf("ConfigType = %q, want 1_row_1_col", res.ConfigType)
	}
	if !reflect.DeepEqual(res.Columns, []string{"Austin", "Boston", "Dallas"}) {
		t.Errorf("Columns = %v", res.Columns)
	}
	if !reflect.DeepEqual(res.Index, []string{"New||ls1", "Won||ls2"}) {
		t.Errorf("Index = %v", res.Index)
	}

	newCell := res.Table["New||ls1"]
	if newCell["Austin"] != 1 || newCell["Boston"] != 1 || newCell["Dallas"] != 1 || newCell["total"] != 3 {
		t.Errorf("New cell = %v, want all cities 1, total 3", newCell)
	}
	wonCell := res.Table["Won||ls2"]
	if wonCell["Austin"] != 1 || wonCell["Boston"] != 1 || wonCell["Dallas"] != 0 || wonCell["total"] != 2 {
		t.Errorf("Won cell = %v, want Austin 1 Boston 1 Dallas 0 total 2", wonCell)
	}
}

func TestBuildPivotRowColTwoLevels(t *testing.T) {
	rows := []record.RawRecord{
		{"product": "A", "region": "east", "quarter": "q1"},
		{"product": "A", "region": "west", "quarter": "q1"},
		{"product": "B", "region": "east", "quarter": "q2"},
		{"product": "A", "region": "east", "quarter": "q1"},
	}
	r := &Report{
		Section:      "opportunities",
		RowGroups:    []string{"product"},
		ColumnGroups: []string{"region", "quarter"},
	}
	res := BuildPivot(PivotInput{Report: r, Rows: rows})

	wantColumns := []string{"east|q1", "east|q2", "west|q1"}
	if !reflect.DeepEqual(res.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", res.Columns, wantColumns)
	}
	if len(res.ColumnHierarchy) != 3 {
		t.Fatalf("ColumnHierarchy len = %d, want 3", len(res.ColumnHierarchy))
	}
	first := res.ColumnHierarchy[0]
	if first.Level1 != "east" || first.Level2 != "q1" || first.Key != "east|q1" {
		t.Errorf("ColumnHierarchy[0] = %+v, want east/q1", first)
	}

	cellA := res.Table["A"]
	if cellA["east|q1"] != 2 || cellA["east|q2"] != 0 || cellA["west|q1"] != 1 || cellA["total"] != 3 {
		t.Errorf("A cell = %v, want east|q1 2 west|q1 1 total 3", cellA)
	}
	if res.Table["B"]["total"] != 1 {
		t.Errorf("B total = %v, want 1", res.Table["B"]["total"])
	}
	if !reflect.DeepEqual(res.Index, []string{"A", "B"}) {
		t.Errorf("Index = %v, want [A B]", res.Index)
	}
}

func TestBuildPivotHierarchyTwoRows(t *testing.T) {
	rows := []record.RawRecord{
		{"dept": "sales", "team": "t2", "amount": 10.0},
		{"dept": "sales", "team": "t1", "amount": 20.0},
		{"dept": "ops", "team": "t1", "amount": 5.0},
		{"dept": "sales", "team": "t1", "amount": 30.0},
	}
	r := &Report{
		Section:    "deals",
		RowGroups:  []string{"dept", "team"},
		Aggregates: []AggregateSpec{{Field: "amount", Func: AggSum}},
	}
	res := BuildPivot(PivotInput{Report: r, Rows: rows, Labels: map[string]string{"amount": "Amount"}})

	if res.Hierarchical == nil {
		t.Fatal("Hierarchical is nil")
	}
	if len(res.Hierarchical.Groups) != 2 {
		t.Fatalf("groups len = %d, want 2", len(res.Hierarchical.Groups))
	}

	ops := res.Hierarchical.Groups[0]
	if ops.Group != "ops" || ops.Subtotal != 1 {
		t.Errorf("first group = %q subtotal %d, want ops/1", ops.Group, ops.Subtotal)
	}

	sales := res.Hierarchical.Groups[1]
	if sales.Subtotal != 3 || len(sales.Items) != 2 {
		t.Fatalf("sales group = %+v, want subtotal 3 with 2 items", sales)
	}
	t1 := sales.Items[0]
	if t1.Group != "t1" || t1.Total != 2 {
		t.Errorf("sales item[0] = %q total %d, want t1/2", t1.Group, t1.Total)
	}
	if t1.Values["Count"] != 2 || t1.Values["Sum of Amount"] != 50.0 {
		t.Errorf("t1 values = %v, want Count 2 sum 50", t1.Values)
	}

	if res.Hierarchical.GrandTotal != 4 {
		t.Errorf("GrandTotal = %d, want 4", res.Hierarchical.GrandTotal)
	}
	if !reflect.DeepEqual(res.Columns, []string{"Count", "Sum of Amount"}) {
		t.Errorf("Columns = %v, want [Count, Sum of Amount]", res.Columns)
	}
}

func TestBuildPivotHierarchyColumnOrder(t *testing.T) {
	rows := []record.RawRecord{
		{"dept": "sales", "team": "t1", "grade": "zeta"},
		{"dept": "sales", "team": "t1", "grade": "alpha"},
		{"dept": "ops", "team": "t2", "grade": "alpha"},
	}
	r := &Report{
		Section:      "deals",
		RowGroups:    []string{"dept", "team"},
		ColumnGroups: []string{"grade"},
	}
	res := BuildPivot(PivotInput{Report: r, Rows: rows})

	// Column headers keep first-appearance order here, unlike the
	// sorted single-column shape.
	if !reflect.DeepEqual(res.Columns, []string{"zeta", "alpha"}) {
		t.Errorf("Columns = %v, want [zeta alpha]", res.Columns)
	}

	if res.Hierarchical == nil || len(res.Hierarchical.Groups) != 2 {
		t.Fatalf("Hierarchical = %+v, want 2 groups", res.Hierarchical)
	}
	ops := res.Hierarchical.Groups[0]
	if ops.Group != "ops" {
		t.Fatalf("first group = %q, want ops", ops.Group)
	}
	t2 := ops.Items[0]
	if t2.Values["zeta"] != 0 || t2.Values["alpha"] != 1 || t2.Total != 1 {
		t.Errorf("t2 values = %v total %d, want alpha 1 total 1", t2.Values, t2.Total)
	}

	sales := res.Hierarchical.Groups[1]
	t1 := sales.Items[0]
	if t1.Values["zeta"] != 1 || t1.Values["alpha"] != 1 || t1.Total != 2 {
		t.Errorf("t1 values = %v total %d, want both 1 total 2", t1.Values, t1.Total)
	}
	if res.Hierarchical.GrandTotal != 3 {
		t.Errorf("GrandTotal = %d, want 3", res.Hierarchical.GrandTotal)
	}
}

func TestBuildPivotThreeRows(t *testing.T) {
	rows := []record.RawRecord{
		{"country": "x", "state": "m", "city": "p"},
		{"country": "x", "state": "m", "city": "q"},
		{"country": "x", "state": "n", "city": "p"},
		{"country": "y", "state": "m", "city": "p"},
	}
	r := &Report{
		Section:   "accounts",
		RowGroups: []string{"country", "state", "city"},
	}
	res := BuildPivot(PivotInput{Report: r, Rows: rows})

	if res.ThreeLevel == nil {
		t.Fatal("ThreeLevel is nil")
	}
	if len(res.ThreeLevel.Groups) != 2 {
		t.Fatalf("groups len = %d, want 2", len(res.ThreeLevel.Groups))
	}

	x := res.ThreeLevel.Groups[0]
	if x.Group != "x" || x.Total != 3 || len(x.Subgroups) != 2 {
		t.Fatalf("x group = %+v, want total 3 with 2 subgroups", x)
	}
	m := x.Subgroups[0]
	if m.Group != "m" || m.Total != 2 || len(m.Items) != 2 {
		t.Errorf("x/m subgroup = %+v, want total 2 with 2 items", m)
	}
	if m.Items[0].Group != "p" || m.Items[0].Count != 1 {
		t.Errorf("x/m item[0] = %+v, want p/1", m.Items[0])
	}

	if res.ThreeLevel.Groups[1].Total != 1 {
		t.Errorf("y total = %d, want 1", res.ThreeLevel.Groups[1].Total)
	}
	if res.ThreeLevel.GrandTotal != 4 {
		t.Errorf("GrandTotal = %d, want 4", res.ThreeLevel.GrandTotal)
	}
}

func TestBuildPivotUnsupportedShape(t *testing.T) {
	rows := []record.RawRecord{{"a": "1", "b": "2", "c": "3", "d": "4"}}
	r := &Report{
		Section:      "leads",
		RowGroups:    []string{"a", "b"},
		ColumnGroups: []string{"c", "d"},
	}
	res := BuildPivot(PivotInput{Report: r, Rows: rows})

	want := "Configuration not supported: 2 rows, 2 columns"
	if res.Error != want {
		t.Errorf("Error = %q, want %q", res.Error, want)
	}
	if len(res.Index) != 0 || len(res.Table) != 0 {
		t.Errorf("Index/Table = %v/%v, want empty", res.Index, res.Table)
	}
	if res.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", res.TotalCount)
	}
}

func TestAggValue(t *testing.T) {
	rows := []record.RawRecord{
		{"v": 10.0},
		{"v": nil},
		{"v": 30.0},
	}
	all := []int{0, 1, 2}

	tests := []struct {
		name string
		fn   string
		idxs []int
		want interface{}
	}{
		{"sum skips nulls", AggSum, all, 40.0},
		{"avg skips nulls", AggAvg, all, 20.0},
		{"min", AggMin, all, 10.0},
		{"max", AggMax, all, 30.0},
		{"count counts every row", AggCount, all, 3},
		{"unknown function counts", "median", all, 3},
		{"sum of empty bucket", AggSum, nil, 0.0},
		{"avg of empty bucket", AggAvg, nil, 0.0},
		{"min with only nulls", AggMin, []int{1}, 0.0},
		{"max with only nulls", AggMax, []int{1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aggValue(rows, tt.idxs, "v", tt.fn); got != tt.want {
				t.Errorf("aggValue(%s) = %v, want %v", tt.fn, got, tt.want)
			}
		})
	}
}

func TestDisplayLookupFallbacks(t *testing.T) {
	lookup := DisplayLookup{
		"f": {"known": {Display: "Known", ID: "k1", Composite: "Known||k1"}},
	}

	if got := lookup.info("f", "known"); got.Composite != "Known||k1" {
		t.Errorf("known composite = %q, want Known||k1", got.Composite)
	}
	if got := lookup.info("f", "other"); got.Display != "other" || got.Composite != "other" {
		t.Errorf("unresolved value = %+v, want passthrough", got)
	}
	if got := lookup.info("f", nil); got.Display != "Unspecified (-)" {
		t.Errorf("nil value display = %q, want Unspecified (-)", got.Display)
	}
	if got := lookup.info("missing_field", ""); got.Display != "Unspecified (-)" {
		t.Errorf("empty value display = %q, want Unspecified (-)", got.Display)
	}
}
