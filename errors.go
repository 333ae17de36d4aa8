package enforcer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/byu-oit-appdev/swagger-enforcer/i18n"
	"github.com/byu-oit-appdev/swagger-enforcer/internal/jsonptr"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeLengthBound          = "length_bound"
	CodeUniqueness           = "uniqueness"
	CodeRequired             = "required"
	CodeUnknownKey           = "unknown_key"
	CodeNumericBound         = "numeric_bound"
	CodePattern              = "pattern"
	CodeInvalidEnum          = "invalid_enum"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeUnsupported          = "unsupported"
	// Combinator outcomes (anyOf/oneOf/not)
	CodeUnionNoMatch   = "union_no_match"
	CodeUnionAmbiguous = "union_ambiguous"
	CodeNot            = "not"
	// Document/value decoding failures
	CodeParseError = "parse_error"
)

// Programmer errors, distinct from validation issues.
var (
	// ErrNilSchema is returned by New when no root schema is supplied.
	ErrNilSchema = errors.New("enforcer: nil schema")
	// ErrIndexOutOfRange is returned by Array.Set for indexes outside [0, Len()].
	ErrIndexOutOfRange = errors.New("enforcer: index out of range")
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: branch summaries, remediation hints, format names.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"maxItems":"1", "got":"2"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// newIssue builds an Issue with its message resolved through the active
// translator and its data mirrored into Params.
func newIssue(path, code string, data map[string]string) Issue {
	is := Issue{Path: jsonptr.Normalize(path), Code: code, Message: i18n.T(code, data)}
	if len(data) > 0 {
		is.Params = make(map[string]any, len(data))
		for k, v := range data {
			is.Params[k] = v
		}
	}
	return is
}

// newHintedIssue is newIssue plus a free-form hint.
func newHintedIssue(path, code string, data map[string]string, hint string) Issue {
	is := newIssue(path, code, data)
	is.Hint = hint
	return is
}
