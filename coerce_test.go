package enforcer_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
)

func TestCoerce_Boolean(t *testing.T) {
	s := &enforcer.Schema{Type: "boolean"}
	if got, applied := enforcer.Coerce(s, "true"); !applied || got != true {
		t.Fatalf("expected true, got: %v (applied=%v)", got, applied)
	}
	if got, applied := enforcer.Coerce(s, 0); !applied || got != false {
		t.Fatalf("expected zero to coerce false, got: %v", got)
	}
	if got, applied := enforcer.Coerce(s, 1); !applied || got != true {
		t.Fatalf("expected one to coerce true, got: %v", got)
	}
	// only the 0/1 encodings convert
	if got, applied := enforcer.Coerce(s, 42); applied || got != 42 {
		t.Fatalf("expected other numerics unchanged, got: %v (applied=%v)", got, applied)
	}
	if got, applied := enforcer.Coerce(s, true); applied || got != true {
		t.Fatalf("expected a bool to pass through, got: %v (applied=%v)", got, applied)
	}
	if got, applied := enforcer.Coerce(s, "yes"); applied || got != "yes" {
		t.Fatalf("expected unparseable text unchanged, got: %v", got)
	}
}

func TestCoerce_Integer(t *testing.T) {
	s := &enforcer.Schema{Type: "integer"}
	if got, applied := enforcer.Coerce(s, "5"); !applied || got != int64(5) {
		t.Fatalf("expected int64(5), got: %T %v", got, got)
	}
	// fractional input is never rounded into conformance
	if got, applied := enforcer.Coerce(s, "5.7"); applied || got != "5.7" {
		t.Fatalf("expected fractional string unchanged, got: %v (applied=%v)", got, applied)
	}
	if got, applied := enforcer.Coerce(s, 5.7); applied || got != 5.7 {
		t.Fatalf("expected fractional float unchanged, got: %v (applied=%v)", got, applied)
	}
	if got, applied := enforcer.Coerce(s, json.Number("5.7")); applied || got != json.Number("5.7") {
		t.Fatalf("expected fractional number unchanged, got: %v (applied=%v)", got, applied)
	}
	if got, _ := enforcer.Coerce(s, true); got != int64(1) {
		t.Fatalf("expected true to coerce 1, got: %v", got)
	}
	if got, applied := enforcer.Coerce(s, 7); applied || got != 7 {
		t.Fatalf("expected int to pass through, got: %v (applied=%v)", got, applied)
	}
	if got, applied := enforcer.Coerce(s, json.Number("8")); !applied || got != int64(8) {
		t.Fatalf("expected decoded number to widen, got: %T %v", got, got)
	}
	if got, applied := enforcer.Coerce(s, "five"); applied || got != "five" {
		t.Fatalf("expected unparseable string unchanged, got: %v", got)
	}
}

func TestCoerce_Number(t *testing.T) {
	s := &enforcer.Schema{Type: "number"}
	if got, applied := enforcer.Coerce(s, "2.5"); !applied || got != 2.5 {
		t.Fatalf("expected 2.5, got: %v", got)
	}
	if got, applied := enforcer.Coerce(s, 5); !applied || got != float64(5) {
		t.Fatalf("expected int to widen to float64, got: %T %v", got, got)
	}
	if got, applied := enforcer.Coerce(s, 2.5); applied || got != 2.5 {
		t.Fatalf("expected float64 to pass through, got: %v (applied=%v)", got, applied)
	}
}

func TestCoerce_DateFormats(t *testing.T) {
	d := &enforcer.Schema{Type: "string", Format: "date"}
	got, applied := enforcer.Coerce(d, "2024-02-03")
	if !applied {
		t.Fatalf("expected date string to coerce")
	}
	want := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	if ts, ok := got.(time.Time); !ok || !ts.Equal(want) {
		t.Fatalf("expected %v, got: %v", want, got)
	}
	if got, applied := enforcer.Coerce(d, "not a date"); applied || got != "not a date" {
		t.Fatalf("expected unparseable date unchanged, got: %v", got)
	}

	dt := &enforcer.Schema{Type: "string", Format: "date-time"}
	got, applied = enforcer.Coerce(dt, "2024-02-03T04:05:06Z")
	if !applied {
		t.Fatalf("expected date-time string to coerce")
	}
	if ts := got.(time.Time); !ts.Equal(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)) {
		t.Fatalf("expected parsed instant, got: %v", ts)
	}
	// instants pass through
	if _, applied := enforcer.Coerce(dt, want); applied {
		t.Fatalf("expected time.Time to pass through unchanged")
	}
}

func TestCoerce_ByteAndBinary(t *testing.T) {
	b := &enforcer.Schema{Type: "string", Format: "byte"}
	got, applied := enforcer.Coerce(b, "aGk=")
	if !applied || !bytes.Equal(got.([]byte), []byte("hi")) {
		t.Fatalf("expected decoded base64, got: %v", got)
	}
	bin := &enforcer.Schema{Type: "string", Format: "binary"}
	got, applied = enforcer.Coerce(bin, "01101000")
	if !applied || !bytes.Equal(got.([]byte), []byte{0x68}) {
		t.Fatalf("expected decoded octet, got: %v", got)
	}
	if got, applied := enforcer.Coerce(bin, []byte{1}); applied || !bytes.Equal(got.([]byte), []byte{1}) {
		t.Fatalf("expected byte buffer to pass through, got: %v", got)
	}
}

func TestCoerce_String(t *testing.T) {
	s := &enforcer.Schema{Type: "string"}
	if got, applied := enforcer.Coerce(s, 5); !applied || got != "5" {
		t.Fatalf("expected \"5\", got: %v", got)
	}
	if got, _ := enforcer.Coerce(s, 2.5); got != "2.5" {
		t.Fatalf("expected \"2.5\", got: %v", got)
	}
	if got, _ := enforcer.Coerce(s, true); got != "true" {
		t.Fatalf("expected \"true\", got: %v", got)
	}
	if got, _ := enforcer.Coerce(s, json.Number("8.25")); got != "8.25" {
		t.Fatalf("expected decoded number text, got: %v", got)
	}
	if got, applied := enforcer.Coerce(s, "already"); applied || got != "already" {
		t.Fatalf("expected string to pass through, got: %v", got)
	}
}

func TestCoerce_NoSchemaNoValue(t *testing.T) {
	if got, applied := enforcer.Coerce(nil, "x"); applied || got != "x" {
		t.Fatalf("expected nil schema to pass values through, got: %v", got)
	}
	s := &enforcer.Schema{Type: "integer"}
	if got, applied := enforcer.Coerce(s, nil); applied || got != nil {
		t.Fatalf("expected nil value unchanged, got: %v", got)
	}
	// containers never coerce
	obj := &enforcer.Schema{Type: "object"}
	m := map[string]any{"a": 1}
	if got, applied := enforcer.Coerce(obj, m); applied || len(got.(map[string]any)) != 1 {
		t.Fatalf("expected container unchanged, got: %v", got)
	}
}
