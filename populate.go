package enforcer

import (
	"sort"

	"github.com/byu-oit-appdev/swagger-enforcer/internal/deepeq"
)

// Populate materializes a value for the construction schema from templates,
// variables and defaults, best-effort and top-down. It never returns an
// error: the bool reports whether anything was applied, and a node whose
// materialization would violate its required properties is discarded rather
// than surfaced. With Copy off the materialized entries are committed into
// the initial map so the caller's root value picks them up; with Copy on the
// initial value is left intact and an independent result is returned.
func (e *Enforcer) Populate(params map[string]any, initial any) (any, bool) {
	if params == nil {
		params = map[string]any{}
	}
	seed := initial
	if e.opts.Populate.Copy {
		seed = deepCopyValue(initial)
	}
	result, applied := e.populateValue(e.schema, seed, params, 0)
	if !applied {
		return initial, false
	}
	if !e.opts.Populate.Copy {
		if orig, ok := initial.(map[string]any); ok {
			if rm, ok := result.(map[string]any); ok {
				for k, v := range rm {
					orig[k] = v
				}
				return orig, true
			}
		}
	}
	return result, true
}

// populateValue expands combinators before materializing. A node carrying
// allOf members or a discriminator that the value resolves materializes as
// the merge of its member set; everything else goes straight to the node
// step. Recursion into the members and into children is pure: inputs are
// never mutated, changed containers come back as copies.
func (e *Enforcer) populateValue(s *Schema, v any, params map[string]any, depth int) (any, bool) {
	if s == nil || depth > e.opts.MaxDepth {
		return v, false
	}
	if e.opts.Populate.AllOf {
		if members := e.populateMembers(s, v); len(members) > 1 {
			return e.populateMerge(members, v, params, depth)
		}
	}
	return e.populateNode(s, v, params, depth, e.populateGuard())
}

// populateGuard reports whether the required-property guard is active.
func (e *Enforcer) populateGuard() bool {
	return !e.opts.Populate.IgnoreMissingRequired
}

// populateMembers flattens a node, its allOf members and the discriminator
// subtype the value names into declaration order. An unknown subtype is
// skipped; materialization has no error channel.
func (e *Enforcer) populateMembers(s *Schema, v any) []*Schema {
	var out []*Schema
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
		if n.Discriminator != nil {
			if obj, ok := v.(map[string]any); ok {
				if name, ok := obj[n.Discriminator.PropertyName].(string); ok {
					if sub, found := e.subtype(n.Discriminator, name); found {
						walk(sub)
					}
				}
			}
		}
	}
	walk(s)
	return out
}

// populateMerge materializes every member independently against a copy of
// the inherited value and shallow-merges the map results in declaration
// order, later members' changes winning. Keys a member merely inherited do
// not participate in the merge, so one member's deep materialization is not
// clobbered by a sibling that left the key alone. The required guard runs
// against the union of the members' required sets.
func (e *Enforcer) populateMerge(members []*Schema, v any, params map[string]any, depth int) (any, bool) {
	base, baseIsMap := v.(map[string]any)
	var merged map[string]any
	var scalar any
	mapApplied, scalarApplied := false, false
	for _, m := range members {
		res, ok := e.populateNode(m, deepCopyValue(v), params, depth, false)
		if !ok {
			continue
		}
		rm, isMap := res.(map[string]any)
		if !isMap {
			scalar = res
			scalarApplied = true
			continue
		}
		if merged == nil {
			if baseIsMap {
				merged = deepCopyMap(base)
			} else {
				merged = make(map[string]any)
			}
		}
		for _, k := range sortedKeys(rm) {
			if baseIsMap {
				if orig, had := base[k]; had && deepeq.Equal(orig, rm[k]) {
					continue
				}
			}
			merged[k] = rm[k]
			mapApplied = true
		}
	}
	if mapApplied {
		if e.populateGuard() {
			for _, m := range members {
				for _, req := range m.Required {
					if _, ok := merged[req]; !ok {
						return v, false
					}
				}
			}
		}
		return merged, true
	}
	if scalarApplied {
		return scalar, true
	}
	return v, false
}

// populateNode runs the per-node steps: variable binding, template
// placeholder and default for an absent value, then structural descent. The
// guard discards the whole node when a required property is still missing
// afterwards. Applied scalar results are coerced to the schema type when
// auto-formatting is on.
func (e *Enforcer) populateNode(s *Schema, v any, params map[string]any, depth int, guard bool) (any, bool) {
	if s == nil || depth > e.opts.MaxDepth {
		return v, false
	}
	p := &e.opts.Populate
	orig := v
	applied := false

	if v == nil {
		if p.Variables && s.Variable != "" {
			if pv, ok := params[s.Variable]; ok && pv != nil {
				v = deepCopyValue(pv)
				applied = true
			}
		}
		if v == nil && p.Templates && s.Template != "" {
			if resolved := e.injectText(s.Template, params); resolved != s.Template {
				v = resolved
				applied = true
			}
		}
		if v == nil && p.Defaults && s.Default != nil {
			v = e.copyDefault(s.Default, params)
			applied = true
		}
	}

	switch ResolveKind(s) {
	case KindObject:
		var cand map[string]any
		if m, ok := v.(map[string]any); ok {
			cand = deepCopyMap(m)
		} else if v == nil {
			cand = make(map[string]any)
		}
		if cand == nil {
			break
		}
		if p.Defaults {
			if dm, ok := s.Default.(map[string]any); ok {
				if e.mergeDefault(cand, dm, params) {
					applied = true
				}
			}
		}
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			res, ok := e.populateValue(s.Properties[name], cand[name], params, depth+1)
			if ok {
				cand[name] = res
				applied = true
			}
		}
		if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
			for _, k := range sortedKeys(cand) {
				if _, declared := s.Properties[k]; declared {
					continue
				}
				res, ok := e.populateValue(s.AdditionalProperties.Schema, cand[k], params, depth+1)
				if ok {
					cand[k] = res
					applied = true
				}
			}
		}
		if guard {
			for _, req := range s.Required {
				if _, ok := cand[req]; !ok {
					return orig, false
				}
			}
		}
		if !applied {
			return orig, false
		}
		v = cand

	case KindArray:
		if arr, ok := v.([]any); ok && s.Items != nil {
			cand := make([]any, len(arr))
			changed := false
			for i, el := range arr {
				res, ok := e.populateValue(s.Items, el, params, depth+1)
				cand[i] = res
				if ok {
					changed = true
				}
			}
			if changed {
				v = cand
				applied = true
			}
		}
	}

	if applied && p.AutoFormat {
		switch v.(type) {
		case map[string]any, []any:
		default:
			v, _ = Coerce(s, v)
		}
	}
	return v, applied
}

// copyDefault deep-copies a declared default; string defaults pass through
// the injector when TemplateDefaults is on.
func (e *Enforcer) copyDefault(def any, params map[string]any) any {
	if s, ok := def.(string); ok && e.opts.Populate.TemplateDefaults {
		return e.injectText(s, params)
	}
	return deepCopyValue(def)
}

// mergeDefault fills the keys of an object-shaped default into a partially
// supplied map, recursing where both sides hold maps. Present leaves are
// never overwritten.
func (e *Enforcer) mergeDefault(dst, def map[string]any, params map[string]any) bool {
	applied := false
	for _, k := range sortedKeys(def) {
		dv := def[k]
		cur, ok := dst[k]
		if !ok {
			dst[k] = e.copyDefault(dv, params)
			applied = true
			continue
		}
		cm, okCur := cur.(map[string]any)
		dm, okDef := dv.(map[string]any)
		if okCur && okDef && e.mergeDefault(cm, dm, params) {
			applied = true
		}
	}
	return applied
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = deepCopyValue(el)
		}
		return out
	case []byte:
		return append([]byte(nil), t...)
	default:
		return v
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}
