package schema

// FieldKind classifies what a field holds. JSON, binary and file-like
// data never get a kind: such fields are simply not registered, which
// keeps them out of grouping and selection everywhere downstream.
type FieldKind string

const (
	KindNumeric  FieldKind = "numeric"
	KindText     FieldKind = "text"
	KindDate     FieldKind = "date"
	KindBool     FieldKind = "bool"
	KindChoice   FieldKind = "choice"
	KindRelation FieldKind = "relation"
)

// SourceInternal sections live in the records collection; external ones
// are read through a named connector.
const (
	SourceInternal = "internal"
	SourceExternal = "external"
)

type Choice struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

// Field describes one reportable column of a section.
type Field struct {
	Name     string    `json:"name"`
	Display  string    `json:"display_name"`
	Kind     FieldKind `json:"kind"`
	Relation string    `json:"relation,omitempty"` // target section for relation fields
	Choices  []Choice  `json:"choices,omitempty"`  // static set for choice fields
	Expr     string    `json:"expr,omitempty"`     // Tengo expression for derived fields
}

func (f Field) IsRelation() bool {
	return f.Kind == KindRelation
}

func (f Field) IsNumeric() bool {
	return f.Kind == KindNumeric
}

func (f Field) HasChoices() bool {
	return f.Kind == KindChoice || f.Kind == KindRelation
}

// IsDerived reports whether the field is computed from an expression
// instead of being stored.
func (f Field) IsDerived() bool {
	return f.Expr != ""
}

// Section is the static descriptor of one record type.
type Section struct {
	Name         string  `json:"name"`
	Display      string  `json:"display_name"`
	Source       string  `json:"source"`
	Connection   string  `json:"connection,omitempty"` // connector name for external sections
	Table        string  `json:"table,omitempty"`      // source table for external sections
	DisplayField string  `json:"display_field"`
	Fields       []Field `json:"fields"`
}

// DisplayInfo is the presentation form of one raw group value. The
// composite key keeps two distinct raw values apart even when they
// render identically, and round-trips through drill-down filters.
type DisplayInfo struct {
	Display   string      `json:"display"`
	ID        interface{} `json:"id"`
	Composite string      `json:"composite_key"`
}

// FieldInfo is the wire shape of a field listing.
type FieldInfo struct {
	Name       string    `json:"name"`
	Display    string    `json:"display_name"`
	Kind       FieldKind `json:"kind"`
	IsRelation bool      `json:"is_relation"`
	IsNumeric  bool      `json:"is_numeric"`
	HasChoices bool      `json:"has_choices"`
}
