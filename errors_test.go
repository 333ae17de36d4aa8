package enforcer_test

import (
	"fmt"
	"strings"
	"testing"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := enforcer.Issues{
		{Path: "/a", Code: enforcer.CodeInvalidType},
		{Path: "/b", Code: enforcer.CodeUnknownKey},
		{Path: "/c", Code: enforcer.CodeLengthBound},
		{Path: "/d", Code: enforcer.CodeRequired},
	}
	s := iss.Error()
	if !strings.Contains(s, "invalid_type at /a") || !strings.Contains(s, "(total 4)") {
		t.Fatalf("expected truncated summary with total, got: %q", s)
	}
	if strings.Contains(s, "/d") {
		t.Fatalf("expected the fourth issue to be elided, got: %q", s)
	}
	if (enforcer.Issues{}).Error() != "" {
		t.Fatalf("expected empty issues to stringify empty")
	}
}

func TestAsIssues_UnwrapsWrappedErrors(t *testing.T) {
	e := mustEnforcer(t, &enforcer.Schema{Type: "string"}, nil, nil)
	err := fmt.Errorf("request rejected: %w", e.Validate(42))
	iss, ok := enforcer.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != enforcer.CodeInvalidType {
		t.Fatalf("expected wrapped issues to unwrap, got: %v", err)
	}
	if _, ok := enforcer.AsIssues(nil); ok {
		t.Fatalf("expected nil error to carry no issues")
	}
}

// Issue parameters carry the violated limit and the offending value so
// callers can build their own messages.
func TestIssue_Params(t *testing.T) {
	s := &enforcer.Schema{Type: "array", MaxItems: intPtr(1)}
	e := mustEnforcer(t, s, nil, nil)
	iss, _ := enforcer.AsIssues(e.Validate([]any{1, 2}))
	if len(iss) != 1 {
		t.Fatalf("expected one issue, got: %v", iss)
	}
	if iss[0].Params["maxItems"] != "1" || iss[0].Params["got"] != "2" {
		t.Fatalf("expected structured params, got: %v", iss[0].Params)
	}
	if iss[0].Message == "" {
		t.Fatalf("expected a translated message")
	}
}
