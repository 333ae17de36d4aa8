package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "length_bound":
			return "長さ制約に違反しています"
		case "uniqueness":
			return "要素が重複しています"
		case "required":
			return "必須プロパティが不足しています"
		case "unknown_key":
			return "未知のキーです"
		case "numeric_bound":
			return "数値制約に違反しています"
		case "pattern":
			return "パターンに一致しません"
		case "invalid_enum":
			return "許可された値ではありません"
		case "discriminator_unknown":
			return "不明なサブタイプです"
		case "unsupported":
			return "この値は強制ラップできません"
		case "union_no_match":
			return "どのスキーマにも一致しません"
		case "union_ambiguous":
			return "複数のスキーマに一致しました"
		case "not":
			return "除外スキーマに一致しています"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "length_bound":
			return "length outside declared bounds"
		case "uniqueness":
			return "duplicate item"
		case "required":
			return "required property missing"
		case "unknown_key":
			return "unknown key"
		case "numeric_bound":
			return "value outside declared bounds"
		case "pattern":
			return "value does not match pattern"
		case "invalid_enum":
			return "value not among enumerated values"
		case "discriminator_unknown":
			return "discriminator names an unknown subtype"
		case "unsupported":
			return "value cannot be enforced"
		case "union_no_match":
			return "no subschema matched"
		case "union_ambiguous":
			return "more than one subschema matched"
		case "not":
			return "value matches excluded schema"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
