package report

import (
	"crm-reports/internal/common/apperr"
)

// PivotShape is the closed set of grouping configurations the pivot
// engine builds. Each variant carries exactly the group fields its
// build path reads, so a handler cannot reach past its shape.
type PivotShape interface {
	// Tag is the wire name of the configuration, e.g. "1_row_1_col".
	Tag() string
	pivotShape()
}

type ShapeSimple struct{}

type ShapeRowOnly struct {
	Row string
}

type ShapeRowCol struct {
	Row string
	Col string
}

type ShapeRowCol2 struct {
	Row  string
	Col1 string
	Col2 string
}

type ShapeHierarchy2 struct {
	Primary   string
	Secondary string
}

type ShapeHierarchy2Col struct {
	Primary   string
	Secondary string
	Col       string
}

type ShapeHierarchy3 struct {
	Level1 string
	Level2 string
	Level3 string
}

func (ShapeSimple) Tag() string        { return "0_row_0_col" }
func (ShapeRowOnly) Tag() string       { return "1_row_0_col" }
func (ShapeRowCol) Tag() string        { return "1_row_1_col" }
func (ShapeRowCol2) Tag() string       { return "1_row_2_col" }
func (ShapeHierarchy2) Tag() string    { return "2_row_0_col" }
func (ShapeHierarchy2Col) Tag() string { return "2_row_1_col" }
func (ShapeHierarchy3) Tag() string    { return "3_row_0_col" }

func (ShapeSimple) pivotShape()        {}
func (ShapeRowOnly) pivotShape()       {}
func (ShapeRowCol) pivotShape()        {}
func (ShapeRowCol2) pivotShape()       {}
func (ShapeHierarchy2) pivotShape()    {}
func (ShapeHierarchy2Col) pivotShape() {}
func (ShapeHierarchy3) pivotShape()    {}

// ShapeFor maps the report's group lists onto a variant. Any pair
// outside the seven supported configurations is an
// UNSUPPORTED_CONFIGURATION error, never coerced to a near miss.
func ShapeFor(rows, cols []string) (PivotShape, error) {
	switch {
	case len(rows) == 0 && len(cols) == 0:
		return ShapeSimple{}, nil
	case len(rows) == 1 && len(cols) == 0:
		return ShapeRowOnly{Row: rows[0]}, nil
	case len(rows) == 1 && len(cols) == 1:
		return ShapeRowCol{Row: rows[0], Col: cols[0]}, nil
	case len(rows) == 1 && len(cols) == 2:
		return ShapeRowCol2{Row: rows[0], Col1: cols[0], Col2: cols[1]}, nil
	case len(rows) == 2 && len(cols) == 0:
		return ShapeHierarchy2{Primary: rows[0], Secondary: rows[1]}, nil
	case len(rows) == 2 && len(cols) == 1:
		return ShapeHierarchy2Col{Primary: rows[0], Secondary: rows[1], Col: cols[0]}, nil
	case len(rows) == 3 && len(cols) == 0:
		return ShapeHierarchy3{Level1: rows[0], Level2: rows[1], Level3: rows[2]}, nil
	default:
		return nil, apperr.Newf(apperr.TypeUnsupportedConfig,
			"Configuration not supported: %d rows, %d columns", len(rows), len(cols))
	}
}
