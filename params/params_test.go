package params_test

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
	"github.com/byu-oit-appdev/swagger-enforcer/params"
)

func intPtr(n int) *int { return &n }

func newMapper() *params.Mapper {
	return params.NewMapper(nil, enforcer.DefaultOptions())
}

func TestString_Scalar(t *testing.T) {
	p := params.Parameter{
		Name:   "count",
		In:     params.InPath,
		Schema: &enforcer.Schema{Type: "integer"},
	}
	m := newMapper()

	v, err := m.String(p, "42")
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if v != int64(42) {
		t.Fatalf("expected int64 42, got: %#v", v)
	}

	_, err = m.String(p, "abc")
	iss, ok := enforcer.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got: %v", err)
	}
	if iss[0].Code != enforcer.CodeInvalidType || iss[0].Path != "/count" {
		t.Fatalf("expected invalid_type at /count, got: %+v", iss[0])
	}
}

// A schemaless parameter passes its raw value through untouched.
func TestString_NilSchema(t *testing.T) {
	p := params.Parameter{Name: "raw", In: params.InHeader}
	m := newMapper()
	v, err := m.String(p, "anything")
	if err != nil {
		t.Fatalf("expected passthrough, got: %v", err)
	}
	if v != "anything" {
		t.Fatalf("expected raw value unchanged, got: %#v", v)
	}
	v, err = m.Query(p, url.Values{"raw": {"x"}})
	if err != nil || v != "x" {
		t.Fatalf("expected query passthrough, got: %v, %v", v, err)
	}
}

func TestString_DateFormat(t *testing.T) {
	p := params.Parameter{
		Name:   "since",
		In:     params.InHeader,
		Schema: &enforcer.Schema{Type: "string", Format: "date"},
	}
	v, err := newMapper().String(p, "2024-02-03")
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	want := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	if got, ok := v.(time.Time); !ok || !got.Equal(want) {
		t.Fatalf("expected parsed date, got: %#v", v)
	}
}

func TestString_ArrayCSV(t *testing.T) {
	p := params.Parameter{
		Name: "ids",
		In:   params.InHeader,
		Schema: &enforcer.Schema{
			Type:     "array",
			Items:    &enforcer.Schema{Type: "integer"},
			MaxItems: intPtr(2),
		},
	}
	m := newMapper()

	v, err := m.String(p, "1,2")
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if !reflect.DeepEqual(v, []any{int64(1), int64(2)}) {
		t.Fatalf("expected [1 2], got: %#v", v)
	}

	_, err = m.String(p, "1,2,3")
	iss, ok := enforcer.AsIssues(err)
	if !ok || iss[0].Code != enforcer.CodeLengthBound || iss[0].Path != "/ids" {
		t.Fatalf("expected length_bound at /ids, got: %v", err)
	}
}

func TestQuery_CollectionFormats(t *testing.T) {
	cases := []struct {
		format params.CollectionFormat
		raw    string
	}{
		{params.FormatCSV, "1,2"},
		{params.FormatSSV, "1 2"},
		{params.FormatTSV, "1\t2"},
		{params.FormatPipes, "1|2"},
	}
	m := newMapper()
	for _, tc := range cases {
		p := params.Parameter{
			Name:             "ids",
			In:               params.InQuery,
			Schema:           &enforcer.Schema{Type: "array", Items: &enforcer.Schema{Type: "integer"}},
			CollectionFormat: tc.format,
		}
		v, err := m.Query(p, url.Values{"ids": {tc.raw}})
		if err != nil {
			t.Fatalf("%s: expected success, got: %v", tc.format, err)
		}
		if !reflect.DeepEqual(v, []any{int64(1), int64(2)}) {
			t.Fatalf("%s: expected [1 2], got: %#v", tc.format, v)
		}
	}
}

func TestQuery_Multi(t *testing.T) {
	p := params.Parameter{
		Name:             "id",
		In:               params.InQuery,
		Schema:           &enforcer.Schema{Type: "array", Items: &enforcer.Schema{Type: "integer"}},
		CollectionFormat: params.FormatMulti,
	}
	v, err := newMapper().Query(p, url.Values{"id": {"1", "2"}})
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if !reflect.DeepEqual(v, []any{int64(1), int64(2)}) {
		t.Fatalf("expected each repeated key to become an element, got: %#v", v)
	}
}

func TestQuery_MissingParameter(t *testing.T) {
	p := params.Parameter{
		Name:     "ids",
		In:       params.InQuery,
		Required: true,
		Schema:   &enforcer.Schema{Type: "array", Items: &enforcer.Schema{Type: "integer"}},
	}
	m := newMapper()

	_, err := m.Query(p, url.Values{})
	iss, ok := enforcer.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != enforcer.CodeRequired || iss[0].Path != "/ids" {
		t.Fatalf("expected required at /ids, got: %v", err)
	}

	p.Required = false
	v, err := m.Query(p, url.Values{})
	if err != nil || v != nil {
		t.Fatalf("expected missing optional parameter to be silent, got: %v, %v", v, err)
	}
}

func TestQueryAll_StrictUnknownKeys(t *testing.T) {
	declared := []params.Parameter{
		{Name: "limit", In: params.InQuery, Schema: &enforcer.Schema{Type: "integer"}},
		{Name: "trace", In: params.InHeader, Schema: &enforcer.Schema{Type: "string"}},
	}
	m := newMapper()

	out, err := m.QueryAll(declared, url.Values{"limit": {"5"}})
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"limit": int64(5)}) {
		t.Fatalf("expected typed limit, got: %#v", out)
	}

	_, err = m.QueryAll(declared, url.Values{"limit": {"5"}, "stray": {"x"}})
	iss, ok := enforcer.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != enforcer.CodeUnknownKey || iss[0].Path != "/stray" {
		t.Fatalf("expected unknown_key at /stray, got: %v", err)
	}
}

func TestQueryAll_RequiredMissing(t *testing.T) {
	declared := []params.Parameter{
		{Name: "limit", In: params.InQuery, Required: true, Schema: &enforcer.Schema{Type: "integer"}},
	}
	_, err := newMapper().QueryAll(declared, url.Values{})
	iss, ok := enforcer.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != enforcer.CodeRequired || iss[0].Path != "/limit" {
		t.Fatalf("expected required at /limit, got: %v", err)
	}
}

func TestBody_CoercesAndValidates(t *testing.T) {
	p := params.Parameter{
		Name: "payload",
		In:   params.InBody,
		Schema: &enforcer.Schema{
			Type: "object",
			Properties: map[string]*enforcer.Schema{
				"qty":  {Type: "integer"},
				"when": {Type: "string", Format: "date"},
			},
		},
	}
	m := newMapper()

	v, err := m.Body(p, []byte(`{"qty":"5","when":"2024-02-03"}`))
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	body := v.(map[string]any)
	if body["qty"] != int64(5) {
		t.Fatalf("expected coerced qty, got: %#v", body["qty"])
	}
	if _, ok := body["when"].(time.Time); !ok {
		t.Fatalf("expected coerced date, got: %#v", body["when"])
	}

	_, err = m.Body(p, []byte(`{"qty":"abc"}`))
	iss, ok := enforcer.AsIssues(err)
	if !ok || iss[0].Code != enforcer.CodeInvalidType || iss[0].Path != "/payload/qty" {
		t.Fatalf("expected invalid_type at /payload/qty, got: %v", err)
	}
}

func TestBody_ParseError(t *testing.T) {
	p := params.Parameter{Name: "payload", In: params.InBody, Schema: &enforcer.Schema{Type: "object"}}
	_, err := newMapper().Body(p, []byte("{"))
	iss, ok := enforcer.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != enforcer.CodeParseError || iss[0].Path != "/payload" {
		t.Fatalf("expected parse_error at /payload, got: %v", err)
	}
	if iss[0].Cause == nil {
		t.Fatalf("expected the decode error to be carried as the cause")
	}
}

func TestBody_ElementCoercion(t *testing.T) {
	p := params.Parameter{
		Name: "batch",
		In:   params.InBody,
		Schema: &enforcer.Schema{
			Type: "array",
			Items: &enforcer.Schema{
				Type:       "object",
				Properties: map[string]*enforcer.Schema{"id": {Type: "integer"}},
			},
		},
	}
	v, err := newMapper().Body(p, []byte(`[{"id":"7"},{"id":8}]`))
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	batch := v.([]any)
	first := batch[0].(map[string]any)
	second := batch[1].(map[string]any)
	if first["id"] != int64(7) || second["id"] != int64(8) {
		t.Fatalf("expected coerced ids, got: %#v, %#v", first["id"], second["id"])
	}
}
