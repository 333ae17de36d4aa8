package enforcer_test

import (
	"strings"
	"testing"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
)

func TestInject_Handlebar(t *testing.T) {
	got := enforcer.Inject("Hello, {name}! You are {age}.", map[string]any{"name": "Bob", "age": 30}, enforcer.ReplacementHandlebar)
	if got != "Hello, Bob! You are 30." {
		t.Fatalf("expected substitution, got: %q", got)
	}
	// unresolved placeholders stay verbatim
	got = enforcer.Inject("Hi {name}", map[string]any{}, enforcer.ReplacementHandlebar)
	if got != "Hi {name}" {
		t.Fatalf("expected verbatim placeholder, got: %q", got)
	}
}

func TestInject_DoubleHandlebar(t *testing.T) {
	got := enforcer.Inject("{{a}}-{b}", map[string]any{"a": "x", "b": "y"}, enforcer.ReplacementDoubleHandlebar)
	if got != "x-{b}" {
		t.Fatalf("expected only double-braced placeholders to resolve, got: %q", got)
	}
}

func TestInject_Colon(t *testing.T) {
	got := enforcer.Inject("http://host:8080/users/:id", map[string]any{"id": "42"}, enforcer.ReplacementColon)
	if got != "http://host:8080/users/42" {
		t.Fatalf("expected the port to survive and :id to resolve, got: %q", got)
	}
}

func TestInject_UnknownStyleFallsBack(t *testing.T) {
	got := enforcer.Inject("{x}", map[string]any{"x": "ok"}, enforcer.ReplacementStyle("bogus"))
	if got != "ok" {
		t.Fatalf("expected handlebar fallback, got: %q", got)
	}
}

func TestInject_ValueRendering(t *testing.T) {
	params := map[string]any{
		"flag": true,
		"rate": 2.5,
		"user": map[string]any{"id": 1},
	}
	got := enforcer.Inject("{flag} {rate} {user}", params, enforcer.ReplacementHandlebar)
	if !strings.HasPrefix(got, "true 2.5 ") || !strings.Contains(got, `"id"`) {
		t.Fatalf("expected scalar text and JSON for containers, got: %q", got)
	}
}
