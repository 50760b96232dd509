// Package i18n holds the bot's user-facing strings for Portuguese, English and Chinese.
//
// Strings are HTML (Telegram parse mode). Placeholder values passed to T are escaped.
package i18n

import (
	"html"
	"strings"
)

type Lang string

const (
	PT Lang = "pt"
	EN Lang = "en"
	ZH Lang = "zh"
)

// All lists the languages with a catalog, in menu order.
var All = []Lang{PT, EN, ZH}

// Parse maps "pt", "pt-BR", "en_US", "zh-CN"... onto a known language.
func Parse(s string) (Lang, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range All {
		if s == string(l) || strings.HasPrefix(s, string(l)+"-") || strings.HasPrefix(s, string(l)+"_") {
			return l, true
		}
	}
	return "", false
}

// Name is the label shown in the language picker.
func (l Lang) Name() string {
	switch l {
	case PT:
		return "🇧🇷 Português"
	case EN:
		return "🇺🇸 English"
	case ZH:
		return "🇨🇳 中文"
	default:
		return string(l)
	}
}

// Translator resolves keys for a language, falling back to the default language and then to the key.
type Translator struct {
	def       Lang
	supported []Lang
}

// New returns a Translator. Unknown or empty supported languages are ignored; def falls back to PT.
func New(def Lang, supported []Lang) *Translator {
	if _, ok := catalog[def]; !ok {
		def = PT
	}
	t := &Translator{def: def}
	seen := map[Lang]bool{}
	for _, l := range supported {
		if _, ok := catalog[l]; ok && !seen[l] {
			seen[l] = true
			t.supported = append(t.supported, l)
		}
	}
	if len(t.supported) == 0 {
		t.supported = append(t.supported, All...)
	}
	return t
}

func (t *Translator) Default() Lang { return t.def }

func (t *Translator) Supported() []Lang { return append([]Lang(nil), t.supported...) }

// Resolve returns l when supported, otherwise the default language.
func (t *Translator) Resolve(l Lang) Lang {
	for _, s := range t.supported {
		if s == l {
			return l
		}
	}
	return t.def
}

// Detect maps a Telegram language code onto a supported language.
func (t *Translator) Detect(code string) Lang {
	if l, ok := Parse(code); ok {
		return t.Resolve(l)
	}
	return t.def
}

// T renders key in lang. kv are placeholder pairs: T(l, "send_success", "chat_id", "42").
func (t *Translator) T(lang Lang, key string, kv ...string) string {
	s, ok := catalog[t.Resolve(lang)][key]
	if !ok {
		s, ok = catalog[t.def][key]
	}
	if !ok {
		return key
	}
	if len(kv) < 2 {
		return s
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", html.EscapeString(kv[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
