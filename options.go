package enforcer

// Version selects the schema dialect. It decides how discriminators resolve
// (v3 consults the mapping table) and which dialect the document loader
// assumes when a document does not declare one.
type Version int

const (
	V2 Version = 2
	V3 Version = 3
)

func (v Version) String() string {
	if v == V3 {
		return "v3"
	}
	return "v2"
}

// Constraints toggles the constraint rules shared by validation and
// enforcement. Every field is independent; a disabled rule is a no-op.
type Constraints struct {
	MultipleOf           bool
	Maximum              bool
	Minimum              bool
	MaxLength            bool
	MinLength            bool
	Pattern              bool
	MaxItems             bool
	MinItems             bool
	UniqueItems          bool
	AdditionalProperties bool
	MaxProperties        bool
	MinProperties        bool
	Required             bool
	Enum                 bool
}

// ValidateOptions controls the Validator: the constraint rules plus
// type-identity, format and combinator checks.
type ValidateOptions struct {
	Constraints

	// Type-identity checks. When off, a value of the wrong runtime type is
	// not reported (its other checks are skipped regardless).
	Boolean bool
	Integer bool
	Number  bool
	String  bool
	Array   bool
	Object  bool

	// Format checks for string values. DateExists and TimeExists verify the
	// calendar date and the time-of-day beyond the textual shape.
	Binary     bool
	Byte       bool
	Date       bool
	DateTime   bool
	DateExists bool
	TimeExists bool

	// Combinator checks.
	AllOf bool
	AnyOf bool
	OneOf bool
	Not   bool
}

// EnforceOptions controls mutation-time checks on enforced values. Type and
// format identity follow ValidateOptions; Constraints here picks which
// constraint rules reject a mutation.
type EnforceOptions struct {
	Constraints

	// AutoFormat coerces assigned raw scalars toward the target type/format
	// before validation (numeric strings to numbers, date strings to
	// instants, base64/binary strings to byte buffers).
	AutoFormat bool
}

// ReplacementStyle names the placeholder syntax used by the built-in
// injector.
type ReplacementStyle string

const (
	ReplacementHandlebar       ReplacementStyle = "handlebar"       // {name}
	ReplacementDoubleHandlebar ReplacementStyle = "doubleHandlebar" // {{name}}
	ReplacementColon           ReplacementStyle = "colon"           // :name
)

// Injector resolves placeholder text against a parameter map. Returning the
// input unchanged means "nothing resolved".
type Injector func(template string, params map[string]any) string

// PopulateOptions controls materialization.
type PopulateOptions struct {
	// AllOf materializes combinator members and merges the results.
	AllOf bool
	// AutoFormat coerces materialized scalars to the schema type/format.
	AutoFormat bool
	// Copy materializes into a deep copy, leaving the initial value intact.
	Copy bool
	// Defaults applies declared defaults to absent values.
	Defaults bool
	// IgnoreMissingRequired keeps materialized objects even when required
	// properties are still missing. When false such objects are discarded.
	IgnoreMissingRequired bool
	// Templates resolves x-template placeholders for absent values.
	Templates bool
	// TemplateDefaults passes string defaults through the injector too.
	TemplateDefaults bool
	// Variables binds x-variable parameters to absent values.
	Variables bool
	// Replacement selects the built-in placeholder syntax.
	Replacement ReplacementStyle
	// Injector overrides the built-in one when non-nil.
	Injector Injector
}

// Options is the immutable configuration threaded through every call. Build
// it from DefaultOptions and adjust fields; a zero Options disables every
// rule.
type Options struct {
	Validate ValidateOptions
	Enforce  EnforceOptions
	Populate PopulateOptions
	// MaxDepth bounds recursion. Descent beyond it stops silently so cyclic
	// schema graphs cannot recurse without limit.
	MaxDepth int
	Version  Version
}

// DefaultOptions returns the canonical rule set: everything on, except that
// enforcement leaves minItems, minProperties and required off (values are
// usually built up incrementally), the calendar existence checks are opt-in,
// and materialization neither copies nor auto-formats.
func DefaultOptions() Options {
	all := Constraints{
		MultipleOf:           true,
		Maximum:              true,
		Minimum:              true,
		MaxLength:            true,
		MinLength:            true,
		Pattern:              true,
		MaxItems:             true,
		MinItems:             true,
		UniqueItems:          true,
		AdditionalProperties: true,
		MaxProperties:        true,
		MinProperties:        true,
		Required:             true,
		Enum:                 true,
	}
	enforce := all
	enforce.MinItems = false
	enforce.MinProperties = false
	enforce.Required = false
	return Options{
		Validate: ValidateOptions{
			Constraints: all,
			Boolean:     true,
			Integer:     true,
			Number:      true,
			String:      true,
			Array:       true,
			Object:      true,
			Binary:      true,
			Byte:        true,
			Date:        true,
			DateTime:    true,
			AllOf:       true,
			AnyOf:       true,
			OneOf:       true,
			Not:         true,
		},
		Enforce: EnforceOptions{Constraints: enforce},
		Populate: PopulateOptions{
			AllOf:                 true,
			Defaults:              true,
			IgnoreMissingRequired: true,
			Templates:             true,
			TemplateDefaults:      true,
			Variables:             true,
			Replacement:           ReplacementHandlebar,
		},
		MaxDepth: 64,
		Version:  V2,
	}
}
