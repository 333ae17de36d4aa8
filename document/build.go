package document

import (
	"regexp"
	"sort"
	"strings"
	"time"

	j "github.com/goccy/go-json"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
	"github.com/byu-oit-appdev/swagger-enforcer/internal/jsonptr"
)

type builder struct {
	version enforcer.Version
	defs    enforcer.Definitions
	raw     map[string]map[string]any
	diag    *simpleDiag
}

// collectDefinitions gathers raw definition maps from both arenas. Bare
// schemas may carry either container regardless of dialect, so both are
// always consulted.
func (b *builder) collectDefinitions(root map[string]any) {
	if defs, ok := root["definitions"].(map[string]any); ok {
		b.collectArena(defs)
	}
	if comps, ok := root["components"].(map[string]any); ok {
		if schemas, ok := comps["schemas"].(map[string]any); ok {
			b.collectArena(schemas)
		}
	}
}

func (b *builder) collectArena(arena map[string]any) {
	for name, rawDef := range arena {
		if _, ok := b.raw[name]; ok {
			continue
		}
		m, ok := rawDef.(map[string]any)
		if !ok {
			b.diag.warnf("definition %q is not an object", name)
			continue
		}
		b.raw[name] = m
	}
}

func (b *builder) definitionPath(name string) string {
	if b.version == enforcer.V3 {
		return jsonptr.Join(jsonptr.Join("/components", "schemas"), name)
	}
	return jsonptr.Join("/definitions", name)
}

// build returns the schema for one raw node. A node carrying $ref
// resolves to the shared definition; keywords beside the $ref are
// ignored, as Swagger 2.0 prescribes.
func (b *builder) build(raw map[string]any, at string) *enforcer.Schema {
	if ref, ok := raw["$ref"].(string); ok {
		if len(raw) > 1 {
			b.diag.warnf("ignoring keywords beside $ref at %s", jsonptr.Normalize(at))
		}
		return b.resolveRef(ref, at)
	}
	s := &enforcer.Schema{}
	b.fill(s, raw, at)
	return s
}

func (b *builder) resolveRef(ref, at string) *enforcer.Schema {
	name, ok := refName(ref)
	if !ok {
		b.diag.warnf("unsupported $ref %q at %s", ref, jsonptr.Normalize(at))
		return nil
	}
	s, ok := b.defs[name]
	if !ok {
		b.diag.warnf("unresolved $ref %q at %s", ref, jsonptr.Normalize(at))
		return nil
	}
	return s
}

// refName extracts the definition name from a local reference. Remote
// references and pointers deeper than one definition are not supported.
func refName(ref string) (string, bool) {
	for _, prefix := range []string{"#/definitions/", "#/components/schemas/"} {
		if rest, ok := strings.CutPrefix(ref, prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			return jsonptr.Unescape(rest), true
		}
	}
	return "", false
}

func (b *builder) fill(s *enforcer.Schema, raw map[string]any, at string) {
	s.Type, _ = raw["type"].(string)
	s.Format, _ = raw["format"].(string)
	if e, ok := raw["enum"].([]any); ok {
		s.Enum = e
	}
	s.Default = raw["default"]
	s.Template, _ = raw["x-template"].(string)
	s.Variable, _ = raw["x-variable"].(string)

	b.fillObject(s, raw, at)
	b.fillArray(s, raw, at)
	b.fillNumeric(s, raw, at)
	b.fillString(s, raw, at)
	b.fillCombinators(s, raw, at)
}

func (b *builder) fillObject(s *enforcer.Schema, raw map[string]any, at string) {
	if props, ok := raw["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*enforcer.Schema, len(props))
		propsAt := jsonptr.Join(at, "properties")
		for _, name := range sortedRawKeys(props) {
			rawProp, ok := props[name].(map[string]any)
			if !ok {
				b.diag.warnf("property %q is not an object at %s", name, jsonptr.Normalize(at))
				continue
			}
			if sub := b.build(rawProp, jsonptr.Join(propsAt, name)); sub != nil {
				s.Properties[name] = sub
			}
		}
	}
	if req, ok := raw["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	switch ap := raw["additionalProperties"].(type) {
	case bool:
		s.AdditionalProperties = &enforcer.AdditionalProperties{Allowed: ap}
	case map[string]any:
		sub := b.build(ap, jsonptr.Join(at, "additionalProperties"))
		s.AdditionalProperties = &enforcer.AdditionalProperties{Allowed: true, Schema: sub}
	}
	s.MinProperties = intVal(raw["minProperties"])
	s.MaxProperties = intVal(raw["maxProperties"])
	b.fillDiscriminator(s, raw, at)
}

// fillDiscriminator accepts both dialects: Swagger 2.0 spells a bare
// property name, OpenAPI 3 an object with propertyName and mapping.
func (b *builder) fillDiscriminator(s *enforcer.Schema, raw map[string]any, at string) {
	switch d := raw["discriminator"].(type) {
	case string:
		s.Discriminator = &enforcer.Discriminator{PropertyName: d}
	case map[string]any:
		name, _ := d["propertyName"].(string)
		if name == "" {
			b.diag.warnf("discriminator without propertyName at %s", jsonptr.Normalize(at))
			return
		}
		disc := &enforcer.Discriminator{PropertyName: name}
		if mapping, ok := d["mapping"].(map[string]any); ok {
			disc.Mapping = make(map[string]string, len(mapping))
			for k, v := range mapping {
				if target, ok := v.(string); ok {
					disc.Mapping[k] = target
				}
			}
		}
		s.Discriminator = disc
	}
}

func (b *builder) fillArray(s *enforcer.Schema, raw map[string]any, at string) {
	switch items := raw["items"].(type) {
	case map[string]any:
		s.Items = b.build(items, jsonptr.Join(at, "items"))
	case []any:
		b.diag.warnf("tuple items are not supported at %s; using the first entry", jsonptr.Normalize(at))
		if len(items) > 0 {
			if first, ok := items[0].(map[string]any); ok {
				s.Items = b.build(first, jsonptr.Index(jsonptr.Join(at, "items"), 0))
			}
		}
	}
	s.MinItems = intVal(raw["minItems"])
	s.MaxItems = intVal(raw["maxItems"])
	s.UniqueItems, _ = raw["uniqueItems"].(bool)
}

func (b *builder) fillNumeric(s *enforcer.Schema, raw map[string]any, at string) {
	s.Minimum = b.bound(s, raw["minimum"], raw["exclusiveMinimum"], "minimum", at)
	s.Maximum = b.bound(s, raw["maximum"], raw["exclusiveMaximum"], "maximum", at)
	s.MultipleOf = floatVal(raw["multipleOf"])
}

// bound builds one end of a range. Strings are accepted under date and
// date-time formats and become instants. A numeric exclusive keyword
// (the JSON Schema 2020-12 spelling) supplies both value and
// exclusivity when the inclusive keyword is absent.
func (b *builder) bound(s *enforcer.Schema, v, exclusive any, keyword, at string) *enforcer.Bound {
	excl, _ := exclusive.(bool)
	if v == nil {
		if ev := floatVal(exclusive); ev != nil {
			return &enforcer.Bound{Value: *ev, Exclusive: true}
		}
		return nil
	}
	if str, ok := v.(string); ok {
		if t, ok := parseInstant(str, s.Format); ok {
			return &enforcer.Bound{Time: t, IsTime: true, Exclusive: excl}
		}
		b.diag.warnf("%s %q is not numeric at %s", keyword, str, jsonptr.Normalize(at))
		return nil
	}
	f := floatVal(v)
	if f == nil {
		b.diag.warnf("%s is not numeric at %s", keyword, jsonptr.Normalize(at))
		return nil
	}
	return &enforcer.Bound{Value: *f, Exclusive: excl}
}

func parseInstant(str, format string) (time.Time, bool) {
	switch format {
	case "date":
		t, err := time.Parse("2006-01-02", str)
		return t, err == nil
	case "date-time":
		t, err := time.Parse(time.RFC3339Nano, str)
		return t, err == nil
	}
	return time.Time{}, false
}

func (b *builder) fillString(s *enforcer.Schema, raw map[string]any, at string) {
	s.MinLength = intVal(raw["minLength"])
	s.MaxLength = intVal(raw["maxLength"])
	if p, ok := raw["pattern"].(string); ok {
		// Kept even when broken: validation skips what it cannot
		// compile, but authors should hear about it here.
		if _, err := regexp.Compile(p); err != nil {
			b.diag.warnf("pattern %q does not compile at %s: %v", p, jsonptr.Normalize(at), err)
		}
		s.Pattern = p
	}
}

func (b *builder) fillCombinators(s *enforcer.Schema, raw map[string]any, at string) {
	s.AllOf = b.buildList(raw["allOf"], jsonptr.Join(at, "allOf"))
	s.AnyOf = b.buildList(raw["anyOf"], jsonptr.Join(at, "anyOf"))
	s.OneOf = b.buildList(raw["oneOf"], jsonptr.Join(at, "oneOf"))
	if n, ok := raw["not"].(map[string]any); ok {
		s.Not = b.build(n, jsonptr.Join(at, "not"))
	}
}

func (b *builder) buildList(v any, at string) []*enforcer.Schema {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]*enforcer.Schema, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			b.diag.warnf("subschema %d is not an object at %s", i, jsonptr.Normalize(at))
			continue
		}
		if sub := b.build(m, jsonptr.Index(at, i)); sub != nil {
			out = append(out, sub)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func intVal(v any) *int {
	f := floatVal(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func floatVal(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case j.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	default:
		return nil
	}
	return &f
}

func sortedRawKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDefNames(m map[string]map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
