package enforcer

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/byu-oit-appdev/swagger-enforcer/internal/deepeq"
)

// numval is a widened numeric value plus whether it is integral.
type numval struct {
	f        float64
	integral bool
}

func numericValue(v any) (numval, bool) {
	f, ok := deepeq.Numeric(v)
	if !ok {
		return numval{}, false
	}
	return numval{f: f, integral: f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f)}, true
}

// Coerce converts a loosely-typed value toward the schema's resolved
// type/format: boolean-like strings become booleans, numeric strings become
// numbers, date and date-time strings become instants, base64 and binary
// octet strings become byte buffers, and scalars become strings under a
// string-typed schema. The second result reports whether a conversion
// applied; values that already fit, or cannot be converted, come back
// unchanged so validation can judge them.
func Coerce(s *Schema, v any) (any, bool) {
	if s == nil || v == nil {
		return v, false
	}
	switch ResolveKind(s) {
	case KindBoolean:
		return coerceBoolean(v)
	case KindInteger:
		return coerceInteger(v)
	case KindNumber:
		return coerceNumber(v)
	case KindString:
		return coerceString(s.Format, v)
	default:
		return v, false
	}
}

func coerceBoolean(v any) (any, bool) {
	switch t := v.(type) {
	case bool:
		return t, false
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b, true
		}
		return v, false
	default:
		// Only the canonical 0/1 encodings convert; other numerics fall
		// through unchanged and fail the type check.
		if n, ok := numericValue(v); ok {
			switch n.f {
			case 0:
				return false, true
			case 1:
				return true, true
			}
		}
		return v, false
	}
}

func coerceInteger(v any) (any, bool) {
	switch t := v.(type) {
	case int, int64:
		return v, false
	case string:
		// Fractional strings fall through unchanged so the integrality
		// check rejects them; only well-formed integers convert.
		if f, err := strconv.ParseFloat(t, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
		return v, false
	case bool:
		if t {
			return int64(1), true
		}
		return int64(0), true
	default:
		if n, ok := numericValue(v); ok && n.integral {
			if _, isNum := v.(json.Number); isNum {
				return int64(n.f), true
			}
		}
		return v, false
	}
}

func coerceNumber(v any) (any, bool) {
	switch t := v.(type) {
	case float64:
		return v, false
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, true
		}
		return v, false
	case bool:
		if t {
			return float64(1), true
		}
		return float64(0), true
	default:
		if n, ok := numericValue(v); ok {
			return n.f, true
		}
		return v, false
	}
}

func coerceString(format string, v any) (any, bool) {
	switch format {
	case formatDate:
		switch t := v.(type) {
		case string:
			if d, err := parseFullDate(t); err == nil {
				return d, true
			}
		case time.Time:
			return t, false
		}
		return v, false
	case formatDateTime:
		switch t := v.(type) {
		case string:
			if d, err := parseDateTime(t); err == nil {
				return d, true
			}
		case time.Time:
			return t, false
		}
		return v, false
	case formatByte:
		switch t := v.(type) {
		case string:
			if b, err := base64.StdEncoding.DecodeString(t); err == nil {
				return b, true
			}
		case []byte:
			return t, false
		}
		return v, false
	case formatBinary:
		switch t := v.(type) {
		case string:
			if b, err := parseBinary(t); err == nil {
				return b, true
			}
		case []byte:
			return t, false
		}
		return v, false
	default:
		switch t := v.(type) {
		case string:
			return t, false
		case json.Number:
			return t.String(), true
		case bool:
			return strconv.FormatBool(t), true
		default:
			if n, ok := numericValue(v); ok {
				if n.integral {
					return strconv.FormatInt(int64(n.f), 10), true
				}
				return strconv.FormatFloat(n.f, 'f', -1, 64), true
			}
			return v, false
		}
	}
}
