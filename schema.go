package enforcer

import "time"

// Kind is the resolved primitive kind of a schema node.
type Kind int

const (
	KindUnknown Kind = iota
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Bound is a numeric or instant limit. Date and date-time bounds compare as
// instants, never as strings.
type Bound struct {
	Value     float64
	Time      time.Time
	IsTime    bool
	Exclusive bool
}

// AdditionalProperties carries the boolean-or-schema form of the keyword.
// A nil *AdditionalProperties on a Schema means the keyword is absent and
// undeclared properties pass through unchecked.
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema
}

// Discriminator selects a concrete subtype schema by property value. Mapping
// is the v3 value-to-definition table; v2 documents carry only the property
// name.
type Discriminator struct {
	PropertyName string
	Mapping      map[string]string
}

// Schema is one node of a constraint tree, resolved once at document load
// time. $ref targets are shared pointers into the Definitions arena, so
// self-referential graphs need no copying and resolution can key visited
// sets on node identity.
type Schema struct {
	Type     string
	Format   string
	Enum     []any
	Default  any
	Template string // x-template placeholder text
	Variable string // x-variable parameter name

	Properties           map[string]*Schema
	Required             []string
	AdditionalProperties *AdditionalProperties
	MinProperties        *int
	MaxProperties        *int
	Discriminator        *Discriminator

	Items       *Schema
	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	Minimum    *Bound
	Maximum    *Bound
	MultipleOf *float64

	MinLength *int
	MaxLength *int
	Pattern   string

	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema
	Not   *Schema
}

// Definitions is the flat arena of named schemas referenced by $ref and by
// discriminator values.
type Definitions map[string]*Schema

// ResolveKind determines the effective primitive kind of a schema node:
// a declared type wins, then the keyword families, then the kind of the
// first enum entry, then the first kind resolvable through a combinator.
func ResolveKind(s *Schema) Kind {
	return resolveKind(s, make(map[*Schema]bool))
}

func resolveKind(s *Schema, seen map[*Schema]bool) Kind {
	if s == nil || seen[s] {
		return KindUnknown
	}
	seen[s] = true

	if k := declaredKind(s); k != KindUnknown {
		return k
	}

	for _, group := range [][]*Schema{s.AllOf, s.AnyOf, s.OneOf} {
		for _, m := range group {
			if k := resolveKind(m, seen); k != KindUnknown {
				return k
			}
		}
	}
	return KindUnknown
}

// declaredKind resolves the kind a node states on its own: declared type,
// keyword families, then enum entry kind. Combinator descent is left to
// resolveKind.
func declaredKind(s *Schema) Kind {
	switch s.Type {
	case "boolean":
		return KindBoolean
	case "integer":
		return KindInteger
	case "number":
		return KindNumber
	case "string":
		return KindString
	case "array":
		return KindArray
	case "object":
		return KindObject
	}

	switch {
	case len(s.Properties) > 0 || len(s.Required) > 0 || s.AdditionalProperties != nil ||
		s.MinProperties != nil || s.MaxProperties != nil || s.Discriminator != nil:
		return KindObject
	case s.Items != nil || s.MinItems != nil || s.MaxItems != nil || s.UniqueItems:
		return KindArray
	case s.MultipleOf != nil || (s.Minimum != nil && !s.Minimum.IsTime) || (s.Maximum != nil && !s.Maximum.IsTime):
		return KindNumber
	case s.MinLength != nil || s.MaxLength != nil || s.Pattern != "" ||
		(s.Minimum != nil && s.Minimum.IsTime) || (s.Maximum != nil && s.Maximum.IsTime):
		return KindString
	}

	if len(s.Enum) > 0 {
		if k := kindOfValue(s.Enum[0]); k != KindUnknown {
			return k
		}
	}
	return KindUnknown
}

// kindOfValue classifies a decoded runtime value. Coerced values (time.Time,
// []byte) classify as strings since they stand in for formatted strings.
func kindOfValue(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBoolean
	case string, time.Time, []byte:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	}
	if f, ok := numericValue(v); ok {
		if f.integral {
			return KindInteger
		}
		return KindNumber
	}
	return KindUnknown
}
