package enforcer

import (
	"sort"
	"strings"

	"github.com/byu-oit-appdev/swagger-enforcer/internal/jsonptr"
)

// effectiveSchemas resolves the set of schemas that apply to an object value:
// the node itself, its allOf members flattened recursively, and the subtype
// selected by each discriminator property encountered on the way. The set is
// deduplicated by node identity so self-referential graphs terminate; a
// revisited node contributes nothing further. An unknown subtype surfaces as
// a discriminator_unknown issue, not a hard failure.
func (e *Enforcer) effectiveSchemas(s *Schema, value map[string]any, path string) ([]*Schema, Issues) {
	var out []*Schema
	var iss Issues
	visited := make(map[*Schema]bool)
	var walk func(n *Schema)
	walk = func(n *Schema) {
		if n == nil || visited[n] {
			return
		}
		visited[n] = true
		out = append(out, n)
		for _, m := range n.AllOf {
			walk(m)
		}
		if n.Discriminator == nil || value == nil {
			return
		}
		name, ok := value[n.Discriminator.PropertyName].(string)
		if !ok || name == "" {
			return
		}
		sub, found := e.subtype(n.Discriminator, name)
		if !found {
			iss = AppendIssues(iss, newIssue(jsonptr.Join(path, n.Discriminator.PropertyName),
				CodeDiscriminatorUnknown, map[string]string{"value": name}))
			return
		}
		walk(sub)
	}
	walk(s)
	return out, iss
}

// Subtype resolves the concrete subtype schema selected by a value's
// discriminator property. It returns nil when the node carries no
// discriminator, the property is absent or not a string, or the named
// subtype is not defined.
func (e *Enforcer) Subtype(s *Schema, value map[string]any) *Schema {
	if s == nil || s.Discriminator == nil || value == nil {
		return nil
	}
	name, ok := value[s.Discriminator.PropertyName].(string)
	if !ok || name == "" {
		return nil
	}
	sub, found := e.subtype(s.Discriminator, name)
	if !found {
		return nil
	}
	return sub
}

// subtype looks a discriminator value up in the definitions arena. Under v3
// the mapping table takes precedence; its entries may be bare definition
// names or local refs.
func (e *Enforcer) subtype(d *Discriminator, name string) (*Schema, bool) {
	key := name
	if e.opts.Version == V3 && d.Mapping != nil {
		if mapped, ok := d.Mapping[name]; ok {
			key = definitionKey(mapped)
		}
	}
	s, ok := e.defs[key]
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

// definitionKey strips the local ref prefixes a mapping value may carry.
func definitionKey(ref string) string {
	for _, p := range []string{"#/definitions/", "#/components/schemas/"} {
		if strings.HasPrefix(ref, p) {
			return jsonptr.Unescape(strings.TrimPrefix(ref, p))
		}
	}
	return ref
}

// ---- effective-set helpers shared by the validator and the wrappers ----

// additionalPolicy returns the first explicit additionalProperties policy in
// the effective set, or nil when every member leaves the keyword absent.
func additionalPolicy(effective []*Schema) *AdditionalProperties {
	for _, es := range effective {
		if es.AdditionalProperties != nil {
			return es.AdditionalProperties
		}
	}
	return nil
}

// propertySchemas returns every schema the effective set declares for key,
// in declaration order.
func propertySchemas(effective []*Schema, key string) []*Schema {
	var out []*Schema
	for _, es := range effective {
		if ps, ok := es.Properties[key]; ok {
			out = append(out, ps)
		}
	}
	return out
}

// resolvePropertySchema picks the sub-schema governing one property write or
// read: the first declared schema, else an additionalProperties schema.
// forbidden reports an explicit additionalProperties:false policy applying
// to the undeclared key.
func resolvePropertySchema(effective []*Schema, key string) (sub *Schema, forbidden bool) {
	if ps := propertySchemas(effective, key); len(ps) > 0 {
		return ps[0], false
	}
	if ap := additionalPolicy(effective); ap != nil {
		if ap.Schema != nil {
			return ap.Schema, false
		}
		return nil, !ap.Allowed
	}
	return nil, false
}

// requiredBy reports whether any schema in the effective set requires key.
func requiredBy(effective []*Schema, key string) bool {
	for _, es := range effective {
		for _, r := range es.Required {
			if r == key {
				return true
			}
		}
	}
	return false
}

func tightestMaxProperties(effective []*Schema) *int {
	var out *int
	for _, es := range effective {
		if es.MaxProperties != nil && (out == nil || *es.MaxProperties < *out) {
			out = es.MaxProperties
		}
	}
	return out
}

func tightestMinProperties(effective []*Schema) *int {
	var out *int
	for _, es := range effective {
		if es.MinProperties != nil && (out == nil || *es.MinProperties > *out) {
			out = es.MinProperties
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
