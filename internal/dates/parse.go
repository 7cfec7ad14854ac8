package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// recognizer is one entry of the ordered format table.
type recognizer struct {
	name string
	re   *regexp.Regexp
	// monthFirst marks M/D/YYYY captures; all others capture Y, M, D in order.
	monthFirst bool
}

// recognizers is evaluated top to bottom and the first structural match wins.
// The order is part of the contract: "2026-04-16 23:59:59" must be claimed by
// the ISO entry even though three later entries also fit its shape.
var recognizers = []recognizer{
	{name: "iso-datetime", re: regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:T|\s)(\d{1,2}):(\d{1,2}):(\d{1,2})`)},
	{name: "slash-datetime", re: regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})\s+(\d{1,2}):(\d{1,2}):(\d{1,2})`)},
	{name: "dash-datetime", re: regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})\s+(\d{1,2}):(\d{1,2}):(\d{1,2})`)},
	{name: "mixed-datetime", re: regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})\s+(\d{1,2}):(\d{1,2}):(\d{1,2})`)},
	{name: "date", re: regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)},
	{name: "cjk", re: regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日`)},
	{name: "us", re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), monthFirst: true},
}

// fallbackLayouts is the generic last resort, tried only when no recognizer
// claimed the input or the claimed triple was not a real date.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	"Mon Jan 2 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006.01.02",
	"20060102",
}

// Parse recognises a date in one of the supported textual formats.
// Any time of day in the input is discarded.
//
// Blank input yields an error wrapping ErrEmpty; anything else that cannot be
// turned into a date in [MinYear, MaxYear] yields one wrapping ErrUnrecognized.
func Parse(input string) (CalendarDate, error) {
	s := normalizeInput(input)
	if s == "" {
		return CalendarDate{}, &ParseError{Input: input, Err: ErrEmpty}
	}

	// A structural match that fails validation skips the remaining
	// recognizers and goes straight to the fallback.
	if d, matched := recognize(s); matched && !d.IsZero() {
		return d, nil
	}

	if d, ok := parseFallback(s); ok {
		return d, nil
	}
	return CalendarDate{}, &ParseError{Input: input, Err: ErrUnrecognized}
}

// recognize runs the ordered table. matched reports whether any entry claimed
// s; the returned date is zero when the claimed triple is invalid.
func recognize(s string) (CalendarDate, bool) {
	for _, r := range recognizers {
		m := r.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}

		y, mo, d := m[1], m[2], m[3]
		if r.monthFirst {
			y, mo, d = m[3], m[1], m[2]
		}

		date, err := NewCalendarDate(atoi(y), time.Month(atoi(mo)), atoi(d))
		if err != nil {
			return CalendarDate{}, true
		}
		return date, true
	}
	return CalendarDate{}, false
}

// parseFallback tries the generic layouts and keeps the date part in the
// location carried by the input (UTC when none).
func parseFallback(s string) (CalendarDate, bool) {
	for _, layout := range fallbackLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := DateOf(t)
		if !validTriple(d.year, int(d.month), d.day) {
			return CalendarDate{}, false
		}
		return d, true
	}
	return CalendarDate{}, false
}

// normalizeInput folds compatibility forms (full-width digits, no-break and
// ideographic spaces) with NFKC and turns every remaining Unicode space into
// an ASCII one, so the patterns only have to know about ASCII.
func normalizeInput(input string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, norm.NFKC.String(input))
	return strings.TrimSpace(s)
}

// atoi converts a capture group known to hold 1-4 ASCII digits.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
