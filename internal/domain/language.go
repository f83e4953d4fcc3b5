package domain

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const DefaultTargetLanguage = "en"

// Translation requests use one tag per Chinese script: Simplified variants
// collapse to zh-CN, Traditional ones (zh-Hant, zh-TW, zh-HK) to zh-TW.
const (
	simplifiedChinese  = "zh-CN"
	traditionalChinese = "zh-TW"
)

// NormalizeLanguage reduces a detected tag to the form used for routing and
// translation requests: the base language, except Chinese which keeps its
// script as zh-CN or zh-TW. Unknown input is returned lower-cased; empty and
// undetermined input yields "".
func NormalizeLanguage(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return ""
	}

	parsed, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToLower(trimmed)
	}

	base, _ := parsed.Base()
	switch code := base.String(); code {
	case "und":
		return ""
	case "zh":
		if script, _ := parsed.Script(); script.String() == "Hant" {
			return traditionalChinese
		}
		return simplifiedChinese
	default:
		return code
	}
}

func SameLanguage(a, b string) bool {
	normalized := NormalizeLanguage(a)
	return normalized != "" && normalized == NormalizeLanguage(b)
}

// LanguageName is the English name of tag's base language, such as "English"
// for "en-GB". Unknown tags are returned as given.
func LanguageName(tag string) string {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return tag
	}

	base, _ := parsed.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return tag
}
