package enforcer

import "fmt"

// Enforcer binds a root schema, the shared definitions arena and an immutable
// rule configuration. It exposes validation, live enforcement and
// materialization over that binding. The schema tree and the definitions map
// are treated as read-only for the Enforcer's lifetime.
type Enforcer struct {
	schema *Schema
	defs   Definitions
	opts   Options
}

// New builds an Enforcer. Options are captured by value; zero MaxDepth,
// Version and Replacement are normalized to their defaults, everything else
// is taken as given (start from DefaultOptions and adjust).
func New(schema *Schema, defs Definitions, opts Options) (*Enforcer, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	switch opts.Populate.Replacement {
	case ReplacementHandlebar, ReplacementDoubleHandlebar, ReplacementColon:
	case "":
		opts.Populate.Replacement = ReplacementHandlebar
	default:
		return nil, fmt.Errorf("enforcer: unknown replacement style %q", opts.Populate.Replacement)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 64
	}
	if opts.Version == 0 {
		opts.Version = V2
	}
	if defs == nil {
		defs = Definitions{}
	}
	return &Enforcer{schema: schema, defs: defs, opts: opts}, nil
}

// Schema returns the root schema node.
func (e *Enforcer) Schema() *Schema { return e.schema }

// Definitions returns the shared definitions arena.
func (e *Enforcer) Definitions() Definitions { return e.defs }

// Errors validates a value against the root schema and returns every
// violation of the enabled rules in document order. An empty result means
// the value conforms. It never panics.
func (e *Enforcer) Errors(v any) Issues {
	vd := e.newValidator(e.opts.Validate.Constraints)
	return vd.value(e.schema, v, "", 0, nil)
}

// Validate is Errors shaped as an error: nil when the value conforms.
func (e *Enforcer) Validate(v any) error {
	if iss := e.Errors(v); len(iss) > 0 {
		return iss
	}
	return nil
}

// Container is a live collection whose mutations are schema-checked.
type Container interface {
	// Value returns the underlying raw value, still shared with the wrapper.
	Value() any
	// Len is the element or property count.
	Len() int
}

// Enforce wraps a live object or array so every subsequent mutation is
// validated at the moment of mutation. The initial value is validated first
// under the enforcement rule set and wrapping fails when it does not
// conform. Values that are not containers cannot be enforced and yield an
// unsupported issue.
func (e *Enforcer) Enforce(v any) (Container, error) {
	switch t := v.(type) {
	case map[string]any:
		return e.EnforceObject(t)
	case []any:
		return e.EnforceArray(t)
	case *Object:
		return e.EnforceObject(t.data)
	case *Array:
		return e.EnforceArray(t.data)
	default:
		return nil, Issues{newIssue("", CodeUnsupported, map[string]string{"got": typeName(v)})}
	}
}

// EnforceObject wraps a map. The wrapper shares the map's storage; callers
// hand over ownership and mutate through the wrapper from then on.
func (e *Enforcer) EnforceObject(m map[string]any) (*Object, error) {
	if m == nil {
		m = map[string]any{}
	}
	vd := e.newValidator(e.opts.Enforce.Constraints)
	if iss := vd.value(e.schema, m, "", 0, nil); len(iss) > 0 {
		return nil, iss
	}
	return &Object{enf: e, schema: e.schema, data: m, path: ""}, nil
}

// EnforceArray wraps a slice. As with EnforceObject the storage is shared
// until a growing mutation reallocates it.
func (e *Enforcer) EnforceArray(arr []any) (*Array, error) {
	if arr == nil {
		arr = []any{}
	}
	vd := e.newValidator(e.opts.Enforce.Constraints)
	if iss := vd.value(e.schema, arr, "", 0, nil); len(iss) > 0 {
		return nil, iss
	}
	return &Array{enf: e, schema: e.schema, data: arr, path: ""}, nil
}

// unwrapContainer exposes the raw value behind enforced wrappers so wrapped
// values can be assigned into other enforced values.
func unwrapContainer(v any) any {
	if c, ok := v.(Container); ok {
		return c.Value()
	}
	return v
}
