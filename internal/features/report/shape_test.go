package report

import (
	"reflect"
	"testing"

	"crm-reports/internal/common/apperr"
)

func TestShapeFor(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		cols []string
		want PivotShape
	}{
		{"no groups", nil, nil, ShapeSimple{}},
		{"one row", []string{"a"}, nil, ShapeRowOnly{Row: "a"}},
		{"one row one col", []string{"a"}, []string{"b"}, ShapeRowCol{Row: "a", Col: "b"}},
		{"one row two cols", []string{"a"}, []string{"b", "c"}, ShapeRowCol2{Row: "a", Col1: "b", Col2: "c"}},
		{"two rows", []string{"a", "b"}, nil, ShapeHierarchy2{Primary: "a", Secondary: "b"}},
		{"two rows one col", []string{"a", "b"}, []string{"c"}, ShapeHierarchy2Col{Primary: "a", Secondary: "b", Col: "c"}},
		{"three rows", []string{"a", "b", "c"}, nil, ShapeHierarchy3{Level1: "a", Level2: "b", Level3: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShapeFor(tt.rows, tt.cols)
			if err != nil {
				t.Fatalf("ShapeFor() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ShapeFor() = %#v, want %#v", got, tt.want)
			}

			wantTag := (&Report{RowGroups: tt.rows, ColumnGroups: tt.cols}).ConfigType()
			if got.Tag() != wantTag {
				t.Errorf("Tag() = %q, want %q", got.Tag(), wantTag)
			}
		})
	}
}

func TestShapeForUnsupported(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		cols []string
	}{
		{"column only", nil, []string{"a"}},
		{"two cols only", nil, []string{"a", "b"}},
		{"two rows two cols", []string{"a", "b"}, []string{"c", "d"}},
		{"three rows one col", []string{"a", "b", "c"}, []string{"d"}},
		{"four rows", []string{"a", "b", "c", "d"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, err := ShapeFor(tt.rows, tt.cols)
			if shape != nil {
				t.Errorf("ShapeFor() = %#v, want nil", shape)
			}
			if !apperr.IsType(err, apperr.TypeUnsupportedConfig) {
				t.Errorf("error type = %q, want %q", apperr.TypeOf(err), apperr.TypeUnsupportedConfig)
			}
		})
	}

	_, err := ShapeFor([]string{"a", "b"}, []string{"c", "d"})
	if got, want := err.Error(), "Configuration not supported: 2 rows, 2 columns"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}
