// Package params maps raw request parts (headers, path segments, query
// strings, bodies) onto schema-declared parameters. Raw values are
// converted through the enforcer coercion table, then validated, so the
// application only ever sees typed, schema-conformant inputs.
package params

import (
	"bytes"
	"net/url"
	"sort"
	"strings"

	j "github.com/goccy/go-json"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
	"github.com/byu-oit-appdev/swagger-enforcer/i18n"
	"github.com/byu-oit-appdev/swagger-enforcer/internal/jsonptr"
)

// Location names the request part a parameter is carried in.
type Location string

const (
	InHeader   Location = "header"
	InPath     Location = "path"
	InQuery    Location = "query"
	InFormData Location = "formData"
	InBody     Location = "body"
)

// CollectionFormat selects how an array parameter is encoded on the wire.
type CollectionFormat string

const (
	FormatCSV   CollectionFormat = "csv"
	FormatSSV   CollectionFormat = "ssv"
	FormatTSV   CollectionFormat = "tsv"
	FormatPipes CollectionFormat = "pipes"
	FormatMulti CollectionFormat = "multi"
)

// separator reports the split string for the single-value encodings.
// Unknown formats fall back to csv, the wire default.
func separator(f CollectionFormat) string {
	switch f {
	case FormatSSV:
		return " "
	case FormatTSV:
		return "\t"
	case FormatPipes:
		return "|"
	default:
		return ","
	}
}

// Parameter declares one request input.
type Parameter struct {
	Name     string
	In       Location
	Required bool
	// Schema may be nil for a schemaless parameter; the raw value then
	// passes through unconverted and unvalidated.
	Schema *enforcer.Schema
	// CollectionFormat applies to array parameters; empty means csv.
	CollectionFormat CollectionFormat
}

// Mapper converts raw request parts into typed, validated values. It is
// bound to the definitions the parameter schemas reference so
// discriminators and $ref-shared nodes resolve during validation.
type Mapper struct {
	defs enforcer.Definitions
	opts enforcer.Options
}

func NewMapper(defs enforcer.Definitions, opts enforcer.Options) *Mapper {
	return &Mapper{defs: defs, opts: opts}
}

// String converts a single raw value, as carried by headers and path
// segments. Array schemas split the raw string by the declared
// collection format; multi has no meaning off the query string and
// splits as csv.
func (m *Mapper) String(p Parameter, raw string) (any, error) {
	v := m.convert(p.Schema, raw, p.CollectionFormat)
	if err := m.check(p, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Query extracts p from parsed query or form values. A missing required
// parameter is an issue; a missing optional one returns (nil, nil).
func (m *Mapper) Query(p Parameter, values url.Values) (any, error) {
	raws, ok := values[p.Name]
	if !ok || len(raws) == 0 {
		if p.Required {
			return nil, enforcer.Issues{requiredIssue(p.Name)}
		}
		return nil, nil
	}
	var v any
	if p.CollectionFormat == FormatMulti {
		var items *enforcer.Schema
		if p.Schema != nil {
			items = p.Schema.Items
		}
		elems := make([]any, len(raws))
		for i, raw := range raws {
			elems[i] = coerceOne(items, raw)
		}
		v = elems
	} else {
		v = m.convert(p.Schema, raws[0], p.CollectionFormat)
	}
	if err := m.check(p, v); err != nil {
		return nil, err
	}
	return v, nil
}

// QueryAll maps every declared query and form parameter out of values.
// Undeclared keys are reported as unknown_key issues rather than purged;
// callers that want lenient handling filter values before the call.
func (m *Mapper) QueryAll(declared []Parameter, values url.Values) (map[string]any, error) {
	out := make(map[string]any, len(declared))
	known := make(map[string]bool, len(declared))
	var iss enforcer.Issues
	for _, p := range declared {
		if p.In != InQuery && p.In != InFormData {
			continue
		}
		known[p.Name] = true
		v, err := m.Query(p, values)
		if err != nil {
			if sub, ok := enforcer.AsIssues(err); ok {
				iss = enforcer.AppendIssues(iss, sub...)
				continue
			}
			return nil, err
		}
		if _, present := values[p.Name]; present {
			out[p.Name] = v
		}
	}
	for _, name := range sortedQueryKeys(values) {
		if !known[name] {
			iss = enforcer.AppendIssues(iss, unknownIssue(name))
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// Body decodes a JSON request body, coerces format-typed leaves (dates,
// byte strings, numerics carried as strings) along the declared
// structure, and validates the result. Numbers decode as json.Number so
// integer precision survives.
func (m *Mapper) Body(p Parameter, data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, enforcer.Issues{parseIssue(p.Name, err)}
	}
	v = coerceDeep(p.Schema, v)
	if err := m.check(p, v); err != nil {
		return nil, err
	}
	return v, nil
}

// convert turns one raw string into the shape the schema expects. Array
// schemas split by the collection format and convert each element
// through the items schema; everything else goes through the coercion
// table directly.
func (m *Mapper) convert(s *enforcer.Schema, raw string, format CollectionFormat) any {
	if s != nil && enforcer.ResolveKind(s) == enforcer.KindArray {
		if raw == "" {
			return []any{}
		}
		parts := strings.Split(raw, separator(format))
		elems := make([]any, len(parts))
		for i, part := range parts {
			elems[i] = coerceOne(s.Items, part)
		}
		return elems
	}
	return coerceOne(s, raw)
}

func coerceOne(s *enforcer.Schema, raw string) any {
	v, _ := enforcer.Coerce(s, raw)
	return v
}

// coerceDeep converts leaves of a decoded body along the declared
// structure. Combinator members are left to validation as-is; their
// string-typed leaves are already acceptable to the validator.
func coerceDeep(s *enforcer.Schema, v any) any {
	if s == nil {
		return v
	}
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			if sub, ok := s.Properties[k]; ok {
				t[k] = coerceDeep(sub, vv)
			} else if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
				t[k] = coerceDeep(s.AdditionalProperties.Schema, vv)
			}
		}
		return t
	case []any:
		if s.Items == nil {
			return t
		}
		for i := range t {
			t[i] = coerceDeep(s.Items, t[i])
		}
		return t
	default:
		out, _ := enforcer.Coerce(s, v)
		return out
	}
}

func (m *Mapper) check(p Parameter, v any) error {
	if p.Schema == nil {
		return nil
	}
	enf, err := enforcer.New(p.Schema, m.defs, m.opts)
	if err != nil {
		return err
	}
	if iss := enf.Errors(v); len(iss) > 0 {
		return rebase(iss, p.Name)
	}
	return nil
}

// rebase prefixes issue paths with the parameter name so call sites that
// gather several parameters stay distinguishable.
func rebase(iss enforcer.Issues, name string) enforcer.Issues {
	out := make(enforcer.Issues, len(iss))
	for i, is := range iss {
		sub := is.Path
		if sub == "/" {
			sub = ""
		}
		is.Path = jsonptr.Join("", name) + sub
		out[i] = is
	}
	return out
}

func requiredIssue(name string) enforcer.Issue {
	return enforcer.Issue{
		Path:    jsonptr.Join("", name),
		Code:    enforcer.CodeRequired,
		Message: i18n.T(enforcer.CodeRequired, map[string]string{"key": name}),
		Params:  map[string]any{"key": name},
	}
}

func unknownIssue(name string) enforcer.Issue {
	return enforcer.Issue{
		Path:    jsonptr.Join("", name),
		Code:    enforcer.CodeUnknownKey,
		Message: i18n.T(enforcer.CodeUnknownKey, map[string]string{"key": name}),
		Params:  map[string]any{"key": name},
	}
}

func parseIssue(name string, err error) enforcer.Issue {
	return enforcer.Issue{
		Path:    jsonptr.Join("", name),
		Code:    enforcer.CodeParseError,
		Message: i18n.T(enforcer.CodeParseError, map[string]string{"error": err.Error()}),
		Cause:   err,
		Params:  map[string]any{"error": err.Error()},
	}
}

func sortedQueryKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
