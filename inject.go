package enforcer

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	j "github.com/goccy/go-json"
)

// injectorPatterns matches placeholder names per replacement style. Names
// follow identifier rules, so ":8080" in a URL template is left alone.
var injectorPatterns = map[ReplacementStyle]*regexp.Regexp{
	ReplacementHandlebar:       regexp.MustCompile(`\{([_$a-zA-Z][_$a-zA-Z0-9]*)\}`),
	ReplacementDoubleHandlebar: regexp.MustCompile(`\{\{([_$a-zA-Z][_$a-zA-Z0-9]*)\}\}`),
	ReplacementColon:           regexp.MustCompile(`:([_$a-zA-Z][_$a-zA-Z0-9]*)`),
}

// Inject replaces the placeholders of one style in template with their
// parameter values. Placeholders whose name is not in params stay verbatim,
// and an unknown style falls back to the handlebar style.
func Inject(template string, params map[string]any, style ReplacementStyle) string {
	re, ok := injectorPatterns[style]
	if !ok {
		re = injectorPatterns[ReplacementHandlebar]
	}
	return re.ReplaceAllStringFunc(template, func(match string) string {
		name := re.FindStringSubmatch(match)[1]
		v, ok := params[name]
		if !ok {
			return match
		}
		return paramString(v)
	})
}

// paramString renders a parameter value for text substitution.
func paramString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case j.Number:
		return t.String()
	case time.Time:
		return formatDateTimeCanonical(t)
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		b, err := j.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// injectText applies the configured injector, or the built-in one for the
// configured replacement style.
func (e *Enforcer) injectText(template string, params map[string]any) string {
	if inj := e.opts.Populate.Injector; inj != nil {
		return inj(template, params)
	}
	return Inject(template, params, e.opts.Populate.Replacement)
}
