package enforcer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/byu-oit-appdev/swagger-enforcer/internal/deepeq"
	"github.com/byu-oit-appdev/swagger-enforcer/internal/jsonptr"
)

// validator is the ephemeral per-call validation context: the active
// constraint set and a cache of compiled patterns. Type, format and
// combinator toggles always come from the Validate options; the constraint
// set differs between full validation and mutation-time enforcement.
type validator struct {
	enf      *Enforcer
	rules    Constraints
	patterns map[string]*regexp.Regexp
}

func (e *Enforcer) newValidator(rules Constraints) *validator {
	return &validator{enf: e, rules: rules, patterns: map[string]*regexp.Regexp{}}
}

// value dispatches one schema node. Combinators win over the node's own
// kind; descent past MaxDepth stops silently.
func (vd *validator) value(s *Schema, v any, path string, depth int, iss Issues) Issues {
	if s == nil || depth > vd.enf.opts.MaxDepth {
		return iss
	}
	vo := &vd.enf.opts.Validate
	switch {
	case len(s.AnyOf) > 0:
		if !vo.AnyOf {
			return iss
		}
		return vd.anyOf(s, v, path, depth, iss)
	case len(s.OneOf) > 0:
		if !vo.OneOf {
			return iss
		}
		return vd.oneOf(s, v, path, depth, iss)
	case len(s.AllOf) > 0:
		if !vo.AllOf {
			return iss
		}
		if m, ok := v.(map[string]any); ok {
			// object values flow through the effective schema set so that
			// properties declared by one member are not unknown to another
			return vd.object(s, m, path, depth, iss)
		}
		for _, m := range s.AllOf {
			iss = vd.value(m, v, path, depth, iss)
		}
		return iss
	case s.Not != nil:
		if !vo.Not {
			return iss
		}
		if sub := vd.value(s.Not, v, path, depth, nil); len(sub) == 0 {
			iss = AppendIssues(iss, newIssue(path, CodeNot, nil))
		}
		return iss
	}

	switch ResolveKind(s) {
	case KindBoolean:
		return vd.boolean(s, v, path, iss)
	case KindInteger:
		return vd.numeric(s, v, path, true, iss)
	case KindNumber:
		return vd.numeric(s, v, path, false, iss)
	case KindString:
		return vd.str(s, v, path, iss)
	case KindArray:
		return vd.array(s, v, path, depth, iss)
	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			if vo.Object {
				iss = AppendIssues(iss, vd.typeIssue(path, "object", v))
			}
			return iss
		}
		return vd.object(s, m, path, depth, iss)
	default:
		// schemaless beyond enum membership
		return vd.enum(s, v, path, iss)
	}
}

// anyOf succeeds when at least one branch validates; branches are isolated
// from each other by validating into fresh collections.
func (vd *validator) anyOf(s *Schema, v any, path string, depth int, iss Issues) Issues {
	var branches []string
	for i, m := range s.AnyOf {
		sub := vd.value(m, v, path, depth, nil)
		if len(sub) == 0 {
			return iss
		}
		branches = append(branches, fmt.Sprintf("[%d] %s", i, sub.Error()))
	}
	return AppendIssues(iss, newHintedIssue(path, CodeUnionNoMatch,
		map[string]string{"branches": strconv.Itoa(len(s.AnyOf))},
		strings.Join(branches, " | ")))
}

// oneOf succeeds iff exactly one branch validates. Violations report the
// matched count and, for zero matches, each branch's error summary.
func (vd *validator) oneOf(s *Schema, v any, path string, depth int, iss Issues) Issues {
	matched := 0
	var branches []string
	for i, m := range s.OneOf {
		sub := vd.value(m, v, path, depth, nil)
		if len(sub) == 0 {
			matched++
			continue
		}
		branches = append(branches, fmt.Sprintf("[%d] %s", i, sub.Error()))
	}
	switch {
	case matched == 1:
		return iss
	case matched == 0:
		return AppendIssues(iss, newHintedIssue(path, CodeUnionNoMatch,
			map[string]string{"matched": "0", "branches": strconv.Itoa(len(s.OneOf))},
			strings.Join(branches, " | ")))
	default:
		return AppendIssues(iss, newHintedIssue(path, CodeUnionAmbiguous,
			map[string]string{"matched": strconv.Itoa(matched), "branches": strconv.Itoa(len(s.OneOf))},
			fmt.Sprintf("matched %d of %d subschemas", matched, len(s.OneOf))))
	}
}

func (vd *validator) boolean(s *Schema, v any, path string, iss Issues) Issues {
	if _, ok := v.(bool); !ok {
		if vd.enf.opts.Validate.Boolean {
			iss = AppendIssues(iss, vd.typeIssue(path, "boolean", v))
		}
		return iss
	}
	return vd.enum(s, v, path, iss)
}

func (vd *validator) numeric(s *Schema, v any, path string, integer bool, iss Issues) Issues {
	vo := &vd.enf.opts.Validate
	n, ok := numericValue(v)
	if !ok {
		if (integer && vo.Integer) || (!integer && vo.Number) {
			expected := "number"
			if integer {
				expected = "integer"
			}
			iss = AppendIssues(iss, vd.typeIssue(path, expected, v))
		}
		return iss
	}
	if integer && !n.integral && vo.Integer {
		iss = AppendIssues(iss, vd.typeIssue(path, "integer", v))
	}
	if vd.rules.Maximum && s.Maximum != nil && !s.Maximum.IsTime {
		if n.f > s.Maximum.Value || (s.Maximum.Exclusive && n.f == s.Maximum.Value) {
			iss = AppendIssues(iss, newIssue(path, CodeNumericBound, map[string]string{
				"maximum": formatFloat(s.Maximum.Value), "got": formatFloat(n.f)}))
		}
	}
	if vd.rules.Minimum && s.Minimum != nil && !s.Minimum.IsTime {
		if n.f < s.Minimum.Value || (s.Minimum.Exclusive && n.f == s.Minimum.Value) {
			iss = AppendIssues(iss, newIssue(path, CodeNumericBound, map[string]string{
				"minimum": formatFloat(s.Minimum.Value), "got": formatFloat(n.f)}))
		}
	}
	if vd.rules.MultipleOf && s.MultipleOf != nil && *s.MultipleOf != 0 {
		if math.Mod(n.f, *s.MultipleOf) != 0 {
			iss = AppendIssues(iss, newIssue(path, CodeNumericBound, map[string]string{
				"multipleOf": formatFloat(*s.MultipleOf), "got": formatFloat(n.f)}))
		}
	}
	return vd.enum(s, v, path, iss)
}

func (vd *validator) str(s *Schema, v any, path string, iss Issues) Issues {
	vo := &vd.enf.opts.Validate
	switch t := v.(type) {
	case string:
		iss = vd.stringFormat(s, t, path, iss)
		if vd.rules.MinLength && s.MinLength != nil && utf8.RuneCountInString(t) < *s.MinLength {
			iss = AppendIssues(iss, newIssue(path, CodeLengthBound, map[string]string{
				"minLength": strconv.Itoa(*s.MinLength), "got": strconv.Itoa(utf8.RuneCountInString(t))}))
		}
		if vd.rules.MaxLength && s.MaxLength != nil && utf8.RuneCountInString(t) > *s.MaxLength {
			iss = AppendIssues(iss, newIssue(path, CodeLengthBound, map[string]string{
				"maxLength": strconv.Itoa(*s.MaxLength), "got": strconv.Itoa(utf8.RuneCountInString(t))}))
		}
		if vd.rules.Pattern && s.Pattern != "" {
			if re := vd.pattern(s.Pattern); re != nil && !re.MatchString(t) {
				iss = AppendIssues(iss, newIssue(path, CodePattern, map[string]string{"pattern": s.Pattern}))
			}
		}
		return vd.enum(s, v, path, iss)
	case time.Time:
		// instants stand in for already-coerced date/date-time strings
		if s.Format != formatDate && s.Format != formatDateTime {
			if vo.String {
				iss = AppendIssues(iss, vd.typeIssue(path, "string", v))
			}
			return iss
		}
		iss = vd.instantBounds(s, t, path, iss)
		return vd.enum(s, v, path, iss)
	case []byte:
		if s.Format != formatByte && s.Format != formatBinary {
			if vo.String {
				iss = AppendIssues(iss, vd.typeIssue(path, "string", v))
			}
			return iss
		}
		if vd.rules.MinLength && s.MinLength != nil && len(t) < *s.MinLength {
			iss = AppendIssues(iss, newIssue(path, CodeLengthBound, map[string]string{
				"minLength": strconv.Itoa(*s.MinLength), "got": strconv.Itoa(len(t))}))
		}
		if vd.rules.MaxLength && s.MaxLength != nil && len(t) > *s.MaxLength {
			iss = AppendIssues(iss, newIssue(path, CodeLengthBound, map[string]string{
				"maxLength": strconv.Itoa(*s.MaxLength), "got": strconv.Itoa(len(t))}))
		}
		return iss
	default:
		if vo.String {
			iss = AppendIssues(iss, vd.typeIssue(path, "string", v))
		}
		return iss
	}
}

// stringFormat applies the format specializations: shape first, then the
// opt-in existence checks, then instant bounds. The plain length/pattern
// checks still run afterwards in str.
func (vd *validator) stringFormat(s *Schema, t string, path string, iss Issues) Issues {
	vo := &vd.enf.opts.Validate
	switch s.Format {
	case formatBinary:
		if vo.Binary && !reBinary.MatchString(t) {
			iss = AppendIssues(iss, newIssue(path, CodeInvalidType, map[string]string{"format": formatBinary}))
		}
	case formatByte:
		if vo.Byte && !validBase64(t) {
			iss = AppendIssues(iss, newIssue(path, CodeInvalidType, map[string]string{"format": formatByte}))
		}
	case formatDate:
		if !reDate.MatchString(t) {
			if vo.Date {
				iss = AppendIssues(iss, newIssue(path, CodeInvalidType, map[string]string{"format": formatDate}))
			}
			return iss
		}
		d, err := parseFullDate(t)
		if err != nil {
			if vo.DateExists {
				iss = AppendIssues(iss, newHintedIssue(path, CodeInvalidType,
					map[string]string{"format": formatDate}, "calendar date does not exist"))
			}
			return iss
		}
		iss = vd.instantBounds(s, d, path, iss)
	case formatDateTime:
		if !reDateTime.MatchString(t) {
			if vo.DateTime {
				iss = AppendIssues(iss, newIssue(path, CodeInvalidType, map[string]string{"format": formatDateTime}))
			}
			return iss
		}
		if vo.DateExists {
			if _, err := parseFullDate(t[:10]); err != nil {
				iss = AppendIssues(iss, newHintedIssue(path, CodeInvalidType,
					map[string]string{"format": formatDateTime}, "calendar date does not exist"))
				return iss
			}
		}
		if vo.TimeExists && !clockInRange(t) {
			iss = AppendIssues(iss, newHintedIssue(path, CodeInvalidType,
				map[string]string{"format": formatDateTime}, "time of day out of range"))
			return iss
		}
		if d, err := parseDateTime(t); err == nil {
			iss = vd.instantBounds(s, d, path, iss)
		}
	}
	return iss
}

// instantBounds compares date/date-time values against minimum/maximum as
// instants, never as strings.
func (vd *validator) instantBounds(s *Schema, t time.Time, path string, iss Issues) Issues {
	if vd.rules.Maximum && s.Maximum != nil && s.Maximum.IsTime {
		if t.After(s.Maximum.Time) || (s.Maximum.Exclusive && t.Equal(s.Maximum.Time)) {
			iss = AppendIssues(iss, newIssue(path, CodeNumericBound, map[string]string{
				"maximum": formatDateTimeCanonical(s.Maximum.Time), "got": formatDateTimeCanonical(t)}))
		}
	}
	if vd.rules.Minimum && s.Minimum != nil && s.Minimum.IsTime {
		if t.Before(s.Minimum.Time) || (s.Minimum.Exclusive && t.Equal(s.Minimum.Time)) {
			iss = AppendIssues(iss, newIssue(path, CodeNumericBound, map[string]string{
				"minimum": formatDateTimeCanonical(s.Minimum.Time), "got": formatDateTimeCanonical(t)}))
		}
	}
	return iss
}

func (vd *validator) array(s *Schema, v any, path string, depth int, iss Issues) Issues {
	arr, ok := v.([]any)
	if !ok {
		if vd.enf.opts.Validate.Array {
			iss = AppendIssues(iss, vd.typeIssue(path, "array", v))
		}
		return iss
	}
	if vd.rules.MaxItems && s.MaxItems != nil && len(arr) > *s.MaxItems {
		iss = AppendIssues(iss, newIssue(path, CodeLengthBound, map[string]string{
			"maxItems": strconv.Itoa(*s.MaxItems), "got": strconv.Itoa(len(arr))}))
	}
	if vd.rules.MinItems && s.MinItems != nil && len(arr) < *s.MinItems {
		iss = AppendIssues(iss, newIssue(path, CodeLengthBound, map[string]string{
			"minItems": strconv.Itoa(*s.MinItems), "got": strconv.Itoa(len(arr))}))
	}
	if vd.rules.UniqueItems && s.UniqueItems {
		for i := 1; i < len(arr); i++ {
			for j := 0; j < i; j++ {
				if deepeq.Equal(arr[i], arr[j]) {
					iss = AppendIssues(iss, newIssue(jsonptr.Index(path, i), CodeUniqueness,
						map[string]string{"duplicateOf": strconv.Itoa(j)}))
					break
				}
			}
		}
	}
	if s.Items != nil {
		for i, el := range arr {
			iss = vd.value(s.Items, el, jsonptr.Index(path, i), depth+1, iss)
		}
	}
	return vd.enum(s, v, path, iss)
}

func (vd *validator) object(s *Schema, m map[string]any, path string, depth int, iss Issues) Issues {
	effective, dIss := vd.enf.effectiveSchemas(s, m, path)
	iss = AppendIssues(iss, dIss...)

	// A member that declares a non-object kind can never accept a map.
	for _, es := range effective {
		switch k := declaredKind(es); k {
		case KindObject, KindUnknown:
		default:
			if vd.kindEnabled(k) {
				iss = AppendIssues(iss, vd.typeIssue(path, k.String(), m))
			}
		}
	}

	for _, k := range sortedKeys(m) {
		childPath := jsonptr.Join(path, k)
		if ps := propertySchemas(effective, k); len(ps) > 0 {
			for _, sub := range ps {
				iss = vd.value(sub, m[k], childPath, depth+1, iss)
			}
			continue
		}
		ap := additionalPolicy(effective)
		switch {
		case ap == nil:
			// keyword absent: undeclared properties pass through
		case ap.Schema != nil:
			iss = vd.value(ap.Schema, m[k], childPath, depth+1, iss)
		case !ap.Allowed && vd.rules.AdditionalProperties:
			iss = AppendIssues(iss, newIssue(childPath, CodeUnknownKey, map[string]string{"key": k}))
		}
	}

	if vd.rules.Required {
		seen := map[string]bool{}
		for _, es := range effective {
			for _, r := range es.Required {
				if seen[r] {
					continue
				}
				seen[r] = true
				if _, ok := m[r]; !ok {
					iss = AppendIssues(iss, newIssue(jsonptr.Join(path, r), CodeRequired,
						map[string]string{"key": r}))
				}
			}
		}
	}

	if vd.rules.MaxProperties {
		if max := tightestMaxProperties(effective); max != nil && len(m) > *max {
			iss = AppendIssues(iss, newIssue(path, CodeLengthBound, map[string]string{
				"maxProperties": strconv.Itoa(*max), "got": strconv.Itoa(len(m))}))
		}
	}
	if vd.rules.MinProperties {
		if min := tightestMinProperties(effective); min != nil && len(m) < *min {
			iss = AppendIssues(iss, newIssue(path, CodeLengthBound, map[string]string{
				"minProperties": strconv.Itoa(*min), "got": strconv.Itoa(len(m))}))
		}
	}
	return vd.enum(s, m, path, iss)
}

func (vd *validator) enum(s *Schema, v any, path string, iss Issues) Issues {
	if !vd.rules.Enum || len(s.Enum) == 0 {
		return iss
	}
	for _, e := range s.Enum {
		if deepeq.Equal(v, e) {
			return iss
		}
	}
	return AppendIssues(iss, newIssue(path, CodeInvalidEnum, map[string]string{"got": previewValue(v)}))
}

// pattern compiles and caches a regular expression for the duration of one
// validation call. Uncompilable patterns are skipped; the document loader
// warns about them at load time.
func (vd *validator) pattern(p string) *regexp.Regexp {
	if re, ok := vd.patterns[p]; ok {
		return re
	}
	re, err := regexp.Compile(p)
	if err != nil {
		re = nil
	}
	vd.patterns[p] = re
	return re
}

// kindEnabled reports whether the type-identity toggle for k is on.
func (vd *validator) kindEnabled(k Kind) bool {
	vo := &vd.enf.opts.Validate
	switch k {
	case KindBoolean:
		return vo.Boolean
	case KindInteger:
		return vo.Integer
	case KindNumber:
		return vo.Number
	case KindString:
		return vo.String
	case KindArray:
		return vo.Array
	case KindObject:
		return vo.Object
	default:
		return false
	}
}

func (vd *validator) typeIssue(path, expected string, v any) Issue {
	return newIssue(path, CodeInvalidType, map[string]string{"expected": expected, "got": typeName(v)})
}

// typeName names a runtime value's kind for issue parameters.
func typeName(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case time.Time:
		return "date-time"
	case []byte:
		return "bytes"
	}
	if n, ok := numericValue(v); ok {
		if n.integral {
			return "integer"
		}
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// previewValue renders a short textual preview of a value for issue
// parameters.
func previewValue(v any) string {
	s := fmt.Sprintf("%v", v)
	if utf8.RuneCountInString(s) > 40 {
		rs := []rune(s)
		s = string(rs[:40]) + "..."
	}
	return s
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
