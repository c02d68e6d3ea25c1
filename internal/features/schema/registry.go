package schema

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"crm-reports/internal/common/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationLoader resolves relation fields against the record store.
// Declared here so the registry never imports the record feature.
type RelationLoader interface {
	// ListChoices returns (id, display) pairs for every live record of a section.
	ListChoices(ctx context.Context, section, displayField string) ([]Choice, error)
	// DisplayFor resolves record ids of a section to display strings.
	DisplayFor(ctx context.Context, section, displayField string, ids []string) (map[string]string, error)
}

// Registry holds the static section descriptors. Sections are
// registered explicitly (built-ins at construction, external ones when
// a connection is introspected); nothing is reflected at runtime.
type Registry struct {
	mu       sync.RWMutex
	sections map[string]Section
	fields   map[string]map[string]Field
	order    []string
	loader   RelationLoader
}

func NewRegistry(loader RelationLoader) *Registry {
	r := &Registry{
		sections: make(map[string]Section),
		fields:   make(map[string]map[string]Field),
		loader:   loader,
	}
	for _, s := range builtinSections() {
		// The built-in catalog is code, a failure here is a programming error
		if err := r.Register(s); err != nil {
			panic(fmt.Sprintf("schema: invalid built-in section %q: %v", s.Name, err))
		}
	}
	return r
}

// Register adds a section descriptor. Duplicate section or field names
// are rejected.
func (r *Registry) Register(s Section) error {
	if s.Name == "" {
		return apperr.New(apperr.TypeValidation, "section name is required")
	}
	if s.Source == "" {
		s.Source = SourceInternal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sections[s.Name]; exists {
		return apperr.Newf(apperr.TypeValidation, "section %q is already registered", s.Name)
	}

	byName := make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return apperr.Newf(apperr.TypeValidation, "section %q has a field without a name", s.Name)
		}
		if _, dup := byName[f.Name]; dup {
			return apperr.Newf(apperr.TypeValidation, "section %q registers field %q twice", s.Name, f.Name)
		}
		switch f.Kind {
		case KindNumeric, KindText, KindDate, KindBool, KindChoice, KindRelation:
		default:
			return apperr.Newf(apperr.TypeValidation, "field %q has unknown kind %q", f.Name, f.Kind)
		}
		if f.Kind == KindRelation && f.Relation == "" {
			return apperr.Newf(apperr.TypeValidation, "relation field %q names no target section", f.Name)
		}
		byName[f.Name] = f
	}

	r.sections[s.Name] = s
	r.fields[s.Name] = byName
	r.order = append(r.order, s.Name)
	return nil
}

// Section returns one descriptor by name.
func (r *Registry) Section(name string) (Section, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sections[name]
	if !ok {
		return Section{}, apperr.Newf(apperr.TypeSectionNotFound, "unknown section %q", name)
	}
	return s, nil
}

// Sections returns all descriptors in registration order.
func (r *Registry) Sections() []Section {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Section, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sections[name])
	}
	return out
}

// Field resolves one field of a section. Unknown names fail loudly so a
// stale report configuration never silently drops a column.
func (r *Registry) Field(section, name string) (Field, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName, ok := r.fields[section]
	if !ok {
		return Field{}, apperr.Newf(apperr.TypeSectionNotFound, "unknown section %q", section)
	}
	f, ok := byName[name]
	if !ok {
		return Field{}, apperr.Newf(apperr.TypeFieldNotFound, "section %q has no field %q", section, name)
	}
	return f, nil
}

// FieldInfos returns the wire listing of a section's fields.
func (r *Registry) FieldInfos(section string) ([]FieldInfo, error) {
	s, err := r.Section(section)
	if err != nil {
		return nil, err
	}

	out := make([]FieldInfo, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, FieldInfo{
			Name:       f.Name,
			Display:    f.Display,
			Kind:       f.Kind,
			IsRelation: f.IsRelation(),
			IsNumeric:  f.IsNumeric(),
			HasChoices: f.HasChoices(),
		})
	}
	return out, nil
}

// SearchFields matches a section's fields by substring of name or
// display name, case-insensitive.
func (r *Registry) SearchFields(section, query string) ([]FieldInfo, error) {
	infos, err := r.FieldInfos(section)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return infos, nil
	}

	q := strings.ToLower(query)
	out := make([]FieldInfo, 0, len(infos))
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Name), q) ||
			strings.Contains(strings.ToLower(info.Display), q) {
			out = append(out, info)
		}
	}
	return out, nil
}

// FieldChoices returns the value/display pairs of a choice or relation
// field. Relation choices are loaded on demand, never eagerly.
func (r *Registry) FieldChoices(ctx context.Context, section, field string) ([]Choice, error) {
	f, err := r.Field(section, field)
	if err != nil {
		return nil, err
	}

	switch f.Kind {
	case KindChoice:
		return f.Choices, nil
	case KindRelation:
		target, err := r.Section(f.Relation)
		if err != nil {
			return nil, err
		}
		return r.loader.ListChoices(ctx, target.Name, target.DisplayField)
	default:
		return nil, apperr.Newf(apperr.TypeValidation, "field %q has no choices", field)
	}
}

// ResolveDisplay maps raw group values of one field onto their display
// form, batched so relation lookups hit the store once per field. Keys
// of the returned map are RawKey(value).
func (r *Registry) ResolveDisplay(ctx context.Context, section, field string, values []interface{}) (map[string]DisplayInfo, error) {
	f, err := r.Field(section, field)
	if err != nil {
		return nil, err
	}

	out := make(map[string]DisplayInfo, len(values))

	if f.IsRelation() {
		target, err := r.Section(f.Relation)
		if err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(values))
		for _, v := range values {
			if v == nil {
				continue
			}
			ids = append(ids, RawKey(v))
		}

		displays, err := r.loader.DisplayFor(ctx, target.Name, target.DisplayField, ids)
		if err != nil {
			return nil, err
		}

		for _, v := range values {
			if v == nil {
				continue
			}
			key := RawKey(v)
			if display, ok := displays[key]; ok {
				out[key] = DisplayInfo{
					Display:   display,
					ID:        key,
					Composite: display + "||" + key,
				}
			} else {
				unknown := fmt.Sprintf("Unknown (%s)", key)
				out[key] = DisplayInfo{Display: unknown, ID: v, Composite: unknown}
			}
		}
		return out, nil
	}

	choiceLabels := map[string]string{}
	if f.Kind == KindChoice {
		for _, c := range f.Choices {
			choiceLabels[c.Value] = c.Display
		}
	}

	for _, v := range values {
		if v == nil {
			continue
		}
		key := RawKey(v)

		if f.Kind == KindChoice {
			display := key
			if label, ok := choiceLabels[key]; ok {
				display = label
			}
			out[key] = DisplayInfo{Display: display, ID: v, Composite: display}
			continue
		}

		if key == "" {
			out[key] = DisplayInfo{Display: "Unspecified (-)", ID: nil, Composite: "Unspecified (-)"}
			continue
		}
		out[key] = DisplayInfo{Display: key, ID: v, Composite: key}
	}
	return out, nil
}

// RawKey gives the canonical string form of a raw value, used as the
// grouping key everywhere. Integral floats render without a decimal
// point so Mongo's int32/int64/float64 round-trips stay stable.
func RawKey(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%v", n)
	case float32:
		return RawKey(float64(n))
	case primitive.ObjectID:
		return n.Hex()
	case primitive.DateTime:
		return n.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return n.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
