package connectors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/schema"

	"go.uber.org/zap"
)

func TestBuildSelectPostgres(t *testing.T) {
	req := QueryRequest{
		Table:  "orders",
		Fields: []string{"id", "status", "amount"},
		Filters: []record.FilterSpec{
			{Field: "status", Operator: record.OpExact, Value: "open", Logic: "and"},
			{Field: "amount", Operator: record.OpGt, Value: "100", Logic: "or"},
		},
		Sort:   []SortKey{{Field: "amount", Desc: true}},
		Limit:  50,
		Offset: 10,
	}

	query, args, err := buildSelect(req, true)
	if err != nil {
		t.Fatalf("buildSelect() error: %v", err)
	}

	want := "SELECT id, status, amount FROM orders" +
		" WHERE (status = $1 OR amount > $2)" +
		" ORDER BY amount DESC LIMIT 50 OFFSET 10"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"open", "100"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSelectMySQL(t *testing.T) {
	req := QueryRequest{
		Table: "orders",
		Filters: []record.FilterSpec{
			{Field: "status", Operator: record.OpExact, Value: "open", Logic: "and"},
		},
		Limit: 5,
	}

	query, args, err := buildSelect(req, false)
	if err != nil {
		t.Fatalf("buildSelect() error: %v", err)
	}

	want := "SELECT * FROM orders WHERE status = ? LIMIT 5"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 1 || args[0] != "open" {
		t.Errorf("args = %v", args)
	}
}

// [A(and), B(or), C(and)] must compile to ((A OR B) AND C), the same
// shape CompileFilters gives the Mongo path.
func TestBuildWhereFoldsLeftToRight(t *testing.T) {
	specs := []record.FilterSpec{
		{Field: "a", Operator: record.OpExact, Value: "1", Logic: "and"},
		{Field: "b", Operator: record.OpExact, Value: "2", Logic: "or"},
		{Field: "c", Operator: record.OpExact, Value: "3", Logic: "and"},
	}

	where, args, err := buildWhere(specs, true)
	if err != nil {
		t.Fatalf("buildWhere() error: %v", err)
	}
	if want := "((a = $1 OR b = $2) AND c = $3)"; where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 3 {
		t.Errorf("args = %v, want 3", args)
	}
}

func TestBuildWhereSkipsEmptyValues(t *testing.T) {
	specs := []record.FilterSpec{
		{Field: "a", Operator: record.OpExact, Value: "", Logic: "and"},
		{Field: "b", Operator: record.OpExact, Value: "x", Logic: "or"},
	}

	where, args, err := buildWhere(specs, true)
	if err != nil {
		t.Fatalf("buildWhere() error: %v", err)
	}
	if want := "b = $1"; where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 1 {
		t.Errorf("args = %v, want 1", args)
	}
}

func TestBuildWhereOperators(t *testing.T) {
	tests := []struct {
		operator string
		postgres bool
		want     string
		wantArg  interface{}
	}{
		{record.OpExact, true, "f = $1", "v"},
		{record.OpGt, true, "f > $1", "v"},
		{record.OpLt, true, "f < $1", "v"},
		{record.OpGte, true, "f >= $1", "v"},
		{record.OpLte, true, "f <= $1", "v"},
		{record.OpContains, true, "f ILIKE $1", "%v%"},
		{record.OpContains, false, "f LIKE ?", "%v%"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			clause, arg, err := compileSpecSQL(record.FilterSpec{
				Field: "f", Operator: tt.operator, Value: "v",
			}, tt.postgres, 1)
			if err != nil {
				t.Fatalf("compileSpecSQL() error: %v", err)
			}
			if clause != tt.want {
				t.Errorf("clause = %q, want %q", clause, tt.want)
			}
			if arg != tt.wantArg {
				t.Errorf("arg = %v, want %v", arg, tt.wantArg)
			}
		})
	}
}

func TestContainsEscapesWildcards(t *testing.T) {
	clause, arg, err := compileSpecSQL(record.FilterSpec{
		Field: "title", Operator: record.OpContains, Value: `50%_off\`,
	}, true, 1)
	if err != nil {
		t.Fatalf("compileSpecSQL() error: %v", err)
	}
	if clause != "title ILIKE $1" {
		t.Errorf("clause = %q", clause)
	}
	if want := `%50\%\_off\\%`; arg != want {
		t.Errorf("arg = %q, want %q", arg, want)
	}
}

func TestBuildWhereRejectsUnknownOperator(t *testing.T) {
	_, _, err := buildWhere([]record.FilterSpec{
		{Field: "a", Operator: "between", Value: "1"},
	}, true)
	if !apperr.IsType(err, apperr.TypeUnsupportedOperator) {
		t.Errorf("err = %v, want UNSUPPORTED_OPERATOR", err)
	}
}

func TestBuildSelectRejectsUnsafeIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		req      QueryRequest
		wantType string
	}{
		{
			name:     "table",
			req:      QueryRequest{Table: "orders; DROP TABLE reports"},
			wantType: apperr.TypeValidation,
		},
		{
			name:     "field",
			req:      QueryRequest{Table: "orders", Fields: []string{"id, password"}},
			wantType: apperr.TypeInvalidFieldReference,
		},
		{
			name: "filter field",
			req: QueryRequest{Table: "orders", Filters: []record.FilterSpec{
				{Field: "1=1 --", Operator: record.OpExact, Value: "x"},
			}},
			wantType: apperr.TypeInvalidFieldReference,
		},
		{
			name: "sort field",
			req: QueryRequest{Table: "orders", Sort: []SortKey{
				{Field: "amount desc"},
			}},
			wantType: apperr.TypeInvalidFieldReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildSelect(tt.req, true)
			if !apperr.IsType(err, tt.wantType) {
				t.Errorf("err = %v, want %s", err, tt.wantType)
			}
		})
	}
}

func TestKindForDataType(t *testing.T) {
	tests := []struct {
		dataType string
		want     schema.FieldKind
		ok       bool
	}{
		{"integer", schema.KindNumeric, true},
		{"bigint", schema.KindNumeric, true},
		{"tinyint", schema.KindNumeric, true},
		{"double precision", schema.KindNumeric, true},
		{"numeric", schema.KindNumeric, true},
		{"boolean", schema.KindBool, true},
		{"date", schema.KindDate, true},
		{"timestamp without time zone", schema.KindDate, true},
		{"datetime", schema.KindDate, true},
		{"character varying", schema.KindText, true},
		{"text", schema.KindText, true},
		{"uuid", schema.KindText, true},
		{"json", "", false},
		{"jsonb", "", false},
		{"bytea", "", false},
		{"longblob", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			kind, ok := kindForDataType(tt.dataType)
			if kind != tt.want || ok != tt.ok {
				t.Errorf("kindForDataType(%q) = %q, %v, want %q, %v",
					tt.dataType, kind, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBuildSection(t *testing.T) {
	cols := []Column{
		{Name: "id", DataType: "integer"},
		{Name: "name", DataType: "character varying", Nullable: true},
		{Name: "payload", DataType: "jsonb", Nullable: true},
		{Name: "created_at", DataType: "timestamp without time zone"},
		{Name: "active", DataType: "boolean"},
	}

	sec, err := buildSection(SectionBinding{Name: "wh_orders", Table: "orders"}, "warehouse", cols)
	if err != nil {
		t.Fatalf("buildSection() error: %v", err)
	}

	if sec.Source != schema.SourceExternal || sec.Connection != "warehouse" || sec.Table != "orders" {
		t.Errorf("section binding = %s/%s/%s", sec.Source, sec.Connection, sec.Table)
	}
	if sec.Display != "Wh Orders" {
		t.Errorf("display = %q, want %q", sec.Display, "Wh Orders")
	}
	if sec.DisplayField != "name" {
		t.Errorf("display field = %q, want name", sec.DisplayField)
	}

	if len(sec.Fields) != 4 {
		t.Fatalf("fields = %d, want 4 (payload skipped)", len(sec.Fields))
	}
	kinds := map[string]schema.FieldKind{}
	for _, f := range sec.Fields {
		kinds[f.Name] = f.Kind
	}
	if kinds["id"] != schema.KindNumeric || kinds["active"] != schema.KindBool || kinds["created_at"] != schema.KindDate {
		t.Errorf("kinds = %v", kinds)
	}
	for _, f := range sec.Fields {
		if f.Name == "created_at" && f.Display != "Created At" {
			t.Errorf("created_at display = %q", f.Display)
		}
	}
}

func TestBuildSectionDisplayFieldFallbacks(t *testing.T) {
	t.Run("first text column", func(t *testing.T) {
		sec, err := buildSection(SectionBinding{Name: "s", Table: "t"}, "c", []Column{
			{Name: "id", DataType: "integer"},
			{Name: "sku", DataType: "text"},
		})
		if err != nil {
			t.Fatalf("buildSection() error: %v", err)
		}
		if sec.DisplayField != "sku" {
			t.Errorf("display field = %q, want sku", sec.DisplayField)
		}
	})

	t.Run("no text column", func(t *testing.T) {
		sec, err := buildSection(SectionBinding{Name: "s", Table: "t"}, "c", []Column{
			{Name: "qty", DataType: "integer"},
		})
		if err != nil {
			t.Fatalf("buildSection() error: %v", err)
		}
		if sec.DisplayField != "qty" {
			t.Errorf("display field = %q, want qty", sec.DisplayField)
		}
	})

	t.Run("binding wins", func(t *testing.T) {
		sec, err := buildSection(SectionBinding{Name: "s", Table: "t", DisplayField: "id"}, "c", []Column{
			{Name: "id", DataType: "integer"},
			{Name: "name", DataType: "text"},
		})
		if err != nil {
			t.Fatalf("buildSection() error: %v", err)
		}
		if sec.DisplayField != "id" {
			t.Errorf("display field = %q, want id", sec.DisplayField)
		}
	})
}

func TestBuildSectionNoReportableColumns(t *testing.T) {
	_, err := buildSection(SectionBinding{Name: "s", Table: "t"}, "c", []Column{
		{Name: "payload", DataType: "jsonb"},
	})
	if !apperr.IsType(err, apperr.TypeValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}

type stubLoader struct{}

func (l *stubLoader) ListChoices(ctx context.Context, section, displayField string) ([]schema.Choice, error) {
	return nil, nil
}

func (l *stubLoader) DisplayFor(ctx context.Context, section, displayField string, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}

type fakeConnector struct {
	connected   bool
	failConnect bool
	cols        []Column
	rows        []map[string]interface{}
	lastReq     QueryRequest
}

func (f *fakeConnector) Connect(ctx context.Context) error {
	if f.failConnect {
		return errors.New("dial refused")
	}
	f.connected = true
	return nil
}

func (f *fakeConnector) Disconnect(ctx context.Context) error {
	f.connected = false
	return nil
}

func (f *fakeConnector) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	f.lastReq = req
	return &QueryResponse{Data: f.rows, TotalCount: int64(len(f.rows))}, nil
}

func (f *fakeConnector) GetSchema(ctx context.Context, table string) ([]Column, error) {
	return f.cols, nil
}

func (f *fakeConnector) TestConnection(ctx context.Context) error { return nil }

func (f *fakeConnector) GetType() string { return TypePostgres }

func newTestRegistry(fake *fakeConnector) (*Registry, *schema.Registry) {
	schemas := schema.NewRegistry(&stubLoader{})
	r := NewRegistry(schemas, zap.NewNop())
	r.open = func(cfg ConnectionConfig) Connector { return fake }
	return r, schemas
}

func TestRegistryAddRegistersSections(t *testing.T) {
	fake := &fakeConnector{
		cols: []Column{
			{Name: "id", DataType: "integer"},
			{Name: "status", DataType: "text"},
		},
	}
	r, schemas := newTestRegistry(fake)

	cfg := ConnectionConfig{
		Name: "warehouse",
		Type: TypePostgres,
		Sections: []SectionBinding{
			{Name: "wh_orders", Table: "orders"},
		},
	}
	if err := r.Add(context.Background(), cfg); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if !fake.connected {
		t.Error("connector was not connected")
	}

	sec, err := schemas.Section("wh_orders")
	if err != nil {
		t.Fatalf("section not registered: %v", err)
	}
	if sec.Source != schema.SourceExternal || sec.Connection != "warehouse" || sec.Table != "orders" {
		t.Errorf("section = %+v", sec)
	}

	if err := r.Add(context.Background(), cfg); !apperr.IsType(err, apperr.TypeValidation) {
		t.Errorf("duplicate Add() err = %v, want VALIDATION_ERROR", err)
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"warehouse"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	r, _ := newTestRegistry(&fakeConnector{})
	err := r.Add(context.Background(), ConnectionConfig{Name: "x", Type: "oracle"})
	if !apperr.IsType(err, apperr.TypeValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestRegistryQueryRecords(t *testing.T) {
	fake := &fakeConnector{
		cols: []Column{{Name: "status", DataType: "text"}},
		rows: []map[string]interface{}{
			{"status": "open"},
			{"status": "closed"},
		},
	}
	r, _ := newTestRegistry(fake)

	err := r.Add(context.Background(), ConnectionConfig{
		Name:     "warehouse",
		Type:     TypePostgres,
		Sections: []SectionBinding{{Name: "wh_orders", Table: "orders"}},
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	specs := []record.FilterSpec{{Field: "status", Operator: record.OpExact, Value: "open"}}
	rows, err := r.QueryRecords(context.Background(), "warehouse", "orders", []string{"status"}, specs, 100)
	if err != nil {
		t.Fatalf("QueryRecords() error: %v", err)
	}
	if !reflect.DeepEqual(rows, fake.rows) {
		t.Errorf("rows = %v", rows)
	}

	if fake.lastReq.Table != "orders" || fake.lastReq.Limit != 100 {
		t.Errorf("request = %+v", fake.lastReq)
	}
	if !reflect.DeepEqual(fake.lastReq.Fields, []string{"status"}) {
		t.Errorf("fields = %v", fake.lastReq.Fields)
	}
	if !reflect.DeepEqual(fake.lastReq.Filters, specs) {
		t.Errorf("filters = %v", fake.lastReq.Filters)
	}

	_, err = r.QueryRecords(context.Background(), "nowhere", "orders", nil, nil, 10)
	if !apperr.IsType(err, apperr.TypeConnectionNotFound) {
		t.Errorf("err = %v, want CONNECTION_NOT_FOUND", err)
	}
}

func TestRegistryClose(t *testing.T) {
	fake := &fakeConnector{}
	r, _ := newTestRegistry(fake)

	if err := r.Add(context.Background(), ConnectionConfig{Name: "warehouse", Type: TypePostgres}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if fake.connected {
		t.Error("connector still connected after Close")
	}
	if len(r.Names()) != 0 {
		t.Errorf("Names() = %v, want empty", r.Names())
	}
}

func TestLoadConnections(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		configs, err := LoadConnections("")
		if err != nil || configs != nil {
			t.Errorf("LoadConnections(\"\") = %v, %v", configs, err)
		}
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "connections.json")
		body := `[{"name": "warehouse", "type": "postgres", "host": "db", "database": "wh", "username": "ro",
			"sections": [{"name": "wh_orders", "table": "orders"}]}]`
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}

		configs, err := LoadConnections(path)
		if err != nil {
			t.Fatalf("LoadConnections() error: %v", err)
		}
		if len(configs) != 1 || configs[0].Name != "warehouse" || len(configs[0].Sections) != 1 {
			t.Errorf("configs = %+v", configs)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "connections.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConnections(path); err == nil {
			t.Error("expected an error for invalid json")
		}
	})
}
