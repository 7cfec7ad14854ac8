package search

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// PhoneticIndex holds the two latin renderings of a text used by literal search.
type PhoneticIndex struct {
	// Latin is the continuous transliteration, e.g. "yunfuwuqi" for 云服务器.
	Latin string
	// Initials is the first letter of every unit, e.g. "yfwq" for 云服务器.
	Initials string
}

// NewPhoneticIndex computes both forms of text in one pass.
func NewPhoneticIndex(text string) PhoneticIndex {
	var latin, initials strings.Builder

	for _, r := range norm.NFKC.String(text) {
		if unicode.IsSpace(r) {
			continue
		}

		unit := string(r)
		if r > unicode.MaxASCII {
			if t := strings.Join(strings.Fields(unidecode.Unidecode(unit)), ""); t != "" {
				unit = t
			}
		}

		latin.WriteString(unit)
		first := []rune(unit)[0]
		initials.WriteRune(first)
	}

	return PhoneticIndex{
		Latin:    strings.ToLower(latin.String()),
		Initials: strings.ToLower(initials.String()),
	}
}

// Transliterate returns the continuous latin form of text.
// Characters the transliteration table does not know pass through unchanged.
func Transliterate(text string) string {
	return NewPhoneticIndex(text).Latin
}

// Initials returns the initials form of text.
func Initials(text string) string {
	return NewPhoneticIndex(text).Initials
}

// Contains reports whether the lower-cased needle occurs in either form.
func (p PhoneticIndex) Contains(needle string) bool {
	return strings.Contains(p.Latin, needle) || strings.Contains(p.Initials, needle)
}
