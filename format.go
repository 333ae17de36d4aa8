package enforcer

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"time"
)

// String formats with dedicated handling beyond plain strings.
const (
	formatBinary   = "binary"
	formatByte     = "byte"
	formatDate     = "date"
	formatDateTime = "date-time"
)

var (
	reDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// Shape only; calendar and clock validity are separate opt-in checks.
	reDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[Tt]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:[Zz]|[+-]\d{2}:\d{2})$`)
	reBinary   = regexp.MustCompile(`^(?:[01]{8})*$`)
)

func parseFullDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseDateTime(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatDateTimeCanonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}

// clockInRange verifies the time-of-day fields of a shape-valid date-time
// string: hours below 24, minutes and seconds below 60.
func clockInRange(s string) bool {
	if len(s) < 19 {
		return false
	}
	return s[11:13] < "24" && s[14:16] < "60" && s[17:19] < "60"
}

func validBase64(s string) bool {
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

// parseBinary decodes a binary-digit-group string (eight bits per byte).
func parseBinary(s string) ([]byte, error) {
	if !reBinary.MatchString(s) {
		return nil, fmt.Errorf("not a binary octet string")
	}
	out := make([]byte, 0, len(s)/8)
	for i := 0; i < len(s); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if s[i+j] == '1' {
				b |= 1
			}
		}
		out = append(out, b)
	}
	return out, nil
}
