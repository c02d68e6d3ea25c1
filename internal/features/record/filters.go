package record

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/features/schema"

	"go.mongodb.org/mongo-driver/bson"
)

// FilterSpec is one user-configured predicate. Specs are kept in a
// slice because evaluation order matters: each spec combines with the
// predicate built so far using its own connector.
type FilterSpec struct {
	Key      string `json:"key,omitempty" bson:"key,omitempty"` // unique per report, e.g. lead_status_1
	Field    string `json:"field" bson:"field"`
	Operator string `json:"operator" bson:"operator"`
	Value    string `json:"value" bson:"value"`
	Logic    string `json:"logic" bson:"logic"` // and | or
}

const (
	OpExact    = "exact"
	OpContains = "contains"
	OpGt       = "gt"
	OpLt       = "lt"
	OpGte      = "gte"
	OpLte      = "lte"
)

var validOperators = map[string]bool{
	OpExact:    true,
	OpContains: true,
	OpGt:       true,
	OpLt:       true,
	OpGte:      true,
	OpLte:      true,
}

// ValidOperator reports whether op is a supported filter operator.
func ValidOperator(op string) bool {
	return validOperators[op]
}

// CompileFilters folds the specs into one Mongo query, left to right.
// The first surviving spec's connector is ignored; every later spec
// wraps the running query with its own connector, so
// [A(and), B(or), C(and)] compiles to ((A or B) and C). Specs with an
// empty value are dropped before the fold.
func CompileFilters(reg *schema.Registry, section string, specs []FilterSpec) (bson.M, error) {
	var running bson.M
	have := false

	for _, spec := range specs {
		if spec.Value == "" {
			continue
		}

		clause, err := compileSpec(reg, section, spec)
		if err != nil {
			return nil, err
		}

		if !have {
			running = clause
			have = true
			continue
		}

		if strings.EqualFold(spec.Logic, "or") {
			running = bson.M{"$or": []bson.M{running, clause}}
		} else {
			running = bson.M{"$and": []bson.M{running, clause}}
		}
	}

	if !have {
		return bson.M{}, nil
	}
	return running, nil
}

func compileSpec(reg *schema.Registry, section string, spec FilterSpec) (bson.M, error) {
	field, err := reg.Field(section, spec.Field)
	if err != nil {
		return nil, apperr.Newf(apperr.TypeInvalidFieldReference,
			"filter references unknown field %q on section %q", spec.Field, section)
	}

	if !validOperators[spec.Operator] {
		return nil, apperr.Newf(apperr.TypeUnsupportedOperator,
			"unsupported filter operator %q", spec.Operator)
	}

	path := "data." + field.Name
	value := coerceValue(field, spec.Value)

	switch spec.Operator {
	case OpExact:
		return bson.M{path: value}, nil
	case OpContains:
		return bson.M{path: bson.M{"$regex": regexp.QuoteMeta(spec.Value), "$options": "i"}}, nil
	case OpGt:
		return bson.M{path: bson.M{"$gt": value}}, nil
	case OpLt:
		return bson.M{path: bson.M{"$lt": value}}, nil
	case OpGte:
		return bson.M{path: bson.M{"$gte": value}}, nil
	case OpLte:
		return bson.M{path: bson.M{"$lte": value}}, nil
	}
	// validOperators makes this unreachable
	return nil, apperr.Newf(apperr.TypeUnsupportedOperator, "unsupported filter operator %q", spec.Operator)
}

// coerceValue converts the form-submitted string into the stored shape
// of the field so Mongo comparisons work on the right type.
func coerceValue(field schema.Field, raw string) interface{} {
	switch field.Kind {
	case schema.KindNumeric:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
		return raw
	case schema.KindBool:
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
		return raw
	case schema.KindDate:
		if t, err := parseDate(raw); err == nil {
			return t
		}
		return raw
	case schema.KindRelation:
		// Drill-down links carry "display||id" composites; only the id
		// half is stored on records.
		if idx := strings.LastIndex(raw, "||"); idx >= 0 {
			return raw[idx+2:]
		}
		return raw
	default:
		return raw
	}
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: "2006-01-02", Value: raw}
}
