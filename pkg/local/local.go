package local

import (
	"fmt"

	"golang.org/x/text/language"
)

type Language string

const (
	Eng = Language("en")
	Ger = Language("de")
)

var supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(supported)

// ParseLanguage maps a BCP 47 tag such as "de-AT" to a supported language,
// falling back to English.
func ParseLanguage(s string) Language {
	tag, err := language.Parse(s)
	if err != nil {
		return Eng
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Eng
	}
	base, _ := supported[idx].Base()
	return Language(base.String())
}

// Supported reports whether s is exactly one of the supported language codes.
func Supported(s string) bool {
	for _, tag := range supported {
		if tag.String() == s {
			return true
		}
	}
	return false
}

type Localization struct {
	language Language
	text     string
}

type TextSet struct {
	Default          string
	translationsText map[Language]string
}

func NewTrans(language Language, text string) Localization {
	return Localization{
		language: language,
		text:     text,
	}
}

func NewSet(defaultText string, localizations ...Localization) TextSet {
	set := TextSet{
		Default:          defaultText,
		translationsText: make(map[Language]string),
	}
	for _, localization := range localizations {
		set.translationsText[localization.language] = localization.text
	}
	return set
}

func (l TextSet) Text(language Language) string {
	if text, ok := l.translationsText[language]; ok {
		return text
	}
	return l.Default
}

func (l TextSet) Format(language Language, a ...any) string {
	return fmt.Sprintf(l.Text(language), a...)
}

// Translator resolves message keys for one language. Unknown keys resolve to themselves.
type Translator struct {
	language Language
	catalog  map[string]TextSet
}

func NewTranslator(language Language, catalog map[string]TextSet) *Translator {
	return &Translator{
		language: language,
		catalog:  catalog,
	}
}

func (t *Translator) Language() Language {
	return t.language
}

func (t *Translator) T(key string) string {
	set, ok := t.catalog[key]
	if !ok {
		return key
	}
	return set.Text(t.language)
}

func (t *Translator) Format(key string, a ...any) string {
	return fmt.Sprintf(t.T(key), a...)
}
