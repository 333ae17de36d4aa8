package enforcer

import (
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/byu-oit-appdev/swagger-enforcer/internal/jsonptr"
)

// Object is a schema-enforced map wrapper. Every write resolves the
// applicable sub-schema, validates the candidate value and only then
// commits; a rejected write leaves the map untouched. The wrapper shares
// the map's storage.
type Object struct {
	enf    *Enforcer
	schema *Schema
	data   map[string]any
	path   string
}

// Value returns the underlying map, still shared with the wrapper.
func (o *Object) Value() any { return o.data }

// Len is the property count.
func (o *Object) Len() int { return len(o.data) }

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.data[key]
	return ok
}

// Keys returns the property names in sorted order.
func (o *Object) Keys() []string { return sortedKeys(o.data) }

// Get reads one property. Nested containers are wrapped lazily with their
// sub-schema so deep mutation stays protected; schemaless subtrees come
// back raw.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.data[key]
	if !ok {
		return nil, false
	}
	eff, _ := o.enf.effectiveSchemas(o.schema, o.data, o.path)
	sub, _ := resolvePropertySchema(eff, key)
	if sub == nil {
		return v, true
	}
	switch t := v.(type) {
	case map[string]any:
		return &Object{enf: o.enf, schema: sub, data: t, path: jsonptr.Join(o.path, key)}, true
	case []any:
		k := key
		return &Array{enf: o.enf, schema: sub, data: t, path: jsonptr.Join(o.path, key),
			commit: func(s []any) { o.data[k] = s }}, true
	default:
		return v, true
	}
}

// Set writes one property. The sub-schema is the declared property schema,
// else the additionalProperties schema, else schemaless passthrough. The
// candidate is auto-formatted when enabled and validated against every
// declaring member before commit. Writing an undeclared key is rejected
// under additionalProperties:false, and a new key is rejected when it would
// exceed maxProperties.
func (o *Object) Set(key string, value any) error {
	value = unwrapContainer(value)
	en := &o.enf.opts.Enforce
	eff, _ := o.enf.effectiveSchemas(o.schema, o.data, o.path)

	sub, forbidden := resolvePropertySchema(eff, key)
	if forbidden && en.AdditionalProperties {
		return Issues{newIssue(jsonptr.Join(o.path, key), CodeUnknownKey, map[string]string{"key": key})}
	}
	if _, exists := o.data[key]; !exists && en.MaxProperties {
		if max := tightestMaxProperties(eff); max != nil && len(o.data)+1 > *max {
			return Issues{newIssue(o.path, CodeLengthBound, map[string]string{
				"maxProperties": strconv.Itoa(*max), "got": strconv.Itoa(len(o.data) + 1)})}
		}
	}
	if sub != nil && en.AutoFormat {
		value, _ = Coerce(sub, value)
	}
	// Changing a discriminator property must still name a known subtype.
	if name, ok := value.(string); ok {
		for _, es := range eff {
			if es.Discriminator != nil && es.Discriminator.PropertyName == key {
				if _, found := o.enf.subtype(es.Discriminator, name); !found {
					return Issues{newIssue(jsonptr.Join(o.path, key), CodeDiscriminatorUnknown,
						map[string]string{"value": name})}
				}
			}
		}
	}
	childPath := jsonptr.Join(o.path, key)
	vd := o.enf.newValidator(en.Constraints)
	var iss Issues
	if ps := propertySchemas(eff, key); len(ps) > 0 {
		for _, s := range ps {
			iss = vd.value(s, value, childPath, 0, iss)
		}
	} else if sub != nil {
		iss = vd.value(sub, value, childPath, 0, iss)
	}
	if len(iss) > 0 {
		return iss
	}
	o.data[key] = value
	return nil
}

// Delete removes one property. Removal is rejected while the property is
// required by any effective schema, or when it would drop the object below
// minProperties. Deleting an absent key is a no-op.
func (o *Object) Delete(key string) error {
	if _, ok := o.data[key]; !ok {
		return nil
	}
	en := &o.enf.opts.Enforce
	eff, _ := o.enf.effectiveSchemas(o.schema, o.data, o.path)
	if en.Required && requiredBy(eff, key) {
		return Issues{newIssue(jsonptr.Join(o.path, key), CodeRequired, map[string]string{"key": key})}
	}
	if en.MinProperties {
		if min := tightestMinProperties(eff); min != nil && len(o.data)-1 < *min {
			return Issues{newIssue(o.path, CodeLengthBound, map[string]string{
				"minProperties": strconv.Itoa(*min), "got": strconv.Itoa(len(o.data) - 1)})}
		}
	}
	delete(o.data, key)
	return nil
}

func (o *Object) MarshalJSON() ([]byte, error) { return j.Marshal(o.data) }
