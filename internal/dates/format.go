package dates

import (
	"fmt"

	"golang.org/x/text/language"
)

// displayLocales lists the long-form layouts by supported locale.
// The first entry is the fallback for unknown or malformed tags.
var displayLocales = []struct {
	tag    language.Tag
	layout string
}{
	{language.English, "January 2, 2006"},
	{language.Chinese, "2006年1月2日"},
	{language.Japanese, "2006年1月2日"},
}

var displayMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(displayLocales))
	for i, l := range displayLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// Canonical formats d as zero-padded YYYY-MM-DD.
func Canonical(d CalendarDate) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// Display formats d for people reading it in the given BCP 47 locale,
// e.g. "April 16, 2026" or "2026年4月16日". The output is not meant to be parsed back.
func Display(d CalendarDate, locale string) string {
	_, idx := language.MatchStrings(displayMatcher, locale)
	return d.Time().Format(displayLocales[idx].layout)
}
