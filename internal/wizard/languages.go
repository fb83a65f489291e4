// SPDX-License-Identifier: MIT

package wizard

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is one supported translation target. Code is the engine-side
// identifier; Tag is the canonical BCP 47 tag backing validation.
type Language struct {
	Code string       `json:"code"`
	Name string       `json:"name"`
	Tag  language.Tag `json:"-"`
}

// CodeOriginal is the pseudo-language selecting the source-language
// subtitles. Valid for embedding only, never for translation.
const CodeOriginal = "original"

// TargetLanguages are the translation targets the engine supports, in
// display order.
var TargetLanguages = []Language{
	{Code: "english", Name: "English", Tag: language.English},
	{Code: "lao", Name: "Lao", Tag: language.Lao},
	{Code: "myanmar", Name: "Burmese", Tag: language.Burmese},
	{Code: "khmer", Name: "Khmer", Tag: language.Khmer},
	{Code: "vietnamese", Name: "Vietnamese", Tag: language.Vietnamese},
}

var targetByCode = func() map[string]Language {
	m := make(map[string]Language, len(TargetLanguages))
	for _, l := range TargetLanguages {
		m[l.Code] = l
	}
	return m
}()

// NormalizeTarget resolves user input to a supported target code. It accepts
// the engine codes directly and, as a convenience, anything x/text can match
// to the same base language ("en", "EN-us", "vi", ...).
func NormalizeTarget(input string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(input))
	if _, ok := targetByCode[code]; ok {
		return code, nil
	}
	if tag, err := language.Parse(code); err == nil {
		base, conf := tag.Base()
		if conf >= language.High {
			for _, l := range TargetLanguages {
				if wantBase, _ := l.Tag.Base(); wantBase == base {
					return l.Code, nil
				}
			}
		}
	}
	return "", fmt.Errorf("unsupported target language %q", input)
}

// ValidEmbedLanguage reports whether code may be embedded: the original
// subtitles are always eligible, targets only once translated (the caller
// checks that part).
func ValidEmbedLanguage(code string) bool {
	if code == CodeOriginal {
		return true
	}
	_, ok := targetByCode[code]
	return ok
}
