package connectors

import (
	"strings"

	"crm-reports/internal/common/apperr"
	"crm-reports/internal/features/schema"
)

// kindForDataType maps an information_schema data type onto a field
// kind. JSON and binary types get none, which keeps such columns off
// the reportable surface entirely.
func kindForDataType(dataType string) (schema.FieldKind, bool) {
	switch strings.ToLower(dataType) {
	case "smallint", "integer", "int", "mediumint", "bigint", "tinyint",
		"decimal", "numeric", "real", "double precision", "double", "float":
		return schema.KindNumeric, true
	case "boolean", "bool":
		return schema.KindBool, true
	case "date", "datetime", "timestamp",
		"timestamp without time zone", "timestamp with time zone":
		return schema.KindDate, true
	case "json", "jsonb", "bytea",
		"blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary":
		return "", false
	default:
		return schema.KindText, true
	}
}

// buildSection turns introspected columns into a registrable external
// section. Columns without a kind are skipped; a table left with no
// reportable columns is an error.
func buildSection(binding SectionBinding, connection string, cols []Column) (schema.Section, error) {
	if binding.Name == "" || binding.Table == "" {
		return schema.Section{}, apperr.Newf(apperr.TypeValidation,
			"connection %q has a section binding without a name or table", connection)
	}

	sec := schema.Section{
		Name:       binding.Name,
		Display:    binding.Display,
		Source:     schema.SourceExternal,
		Connection: connection,
		Table:      binding.Table,
	}
	if sec.Display == "" {
		sec.Display = displayName(binding.Name)
	}

	for _, col := range cols {
		kind, ok := kindForDataType(col.DataType)
		if !ok {
			continue
		}
		sec.Fields = append(sec.Fields, schema.Field{
			Name:    col.Name,
			Display: displayName(col.Name),
			Kind:    kind,
		})
	}
	if len(sec.Fields) == 0 {
		return schema.Section{}, apperr.Newf(apperr.TypeValidation,
			"table %q has no reportable columns", binding.Table)
	}

	sec.DisplayField = binding.DisplayField
	if sec.DisplayField == "" {
		sec.DisplayField = pickDisplayField(sec.Fields)
	}
	return sec, nil
}

// pickDisplayField falls back to a column literally named "name", then
// the first text column, then whatever comes first.
func pickDisplayField(fields []schema.Field) string {
	for _, f := range fields {
		if f.Name == "name" {
			return f.Name
		}
	}
	for _, f := range fields {
		if f.Kind == schema.KindText {
			return f.Name
		}
	}
	return fields[0].Name
}

// displayName renders snake_case column names the way the built-in
// catalog writes display names, "annual_revenue" -> "Annual Revenue".
func displayName(col string) string {
	parts := strings.Split(col, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
