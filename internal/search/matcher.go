// Package search decides whether resource fields match a live query typed by
// a user. Matching never fails: a query that cannot be compiled simply
// matches nothing.
package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how a query pattern is interpreted.
type Mode int

const (
	// ModeLiteral is a case-insensitive substring search extended with
	// transliteration and initials matching. It is the zero value.
	ModeLiteral Mode = iota
	// ModeGlob matches the whole candidate against "*" and "?" wildcards.
	ModeGlob
	// ModeRegex searches the candidate with a case-insensitive regular expression.
	ModeRegex
)

// ErrUnknownMode is returned by ParseMode for names it does not know.
var ErrUnknownMode = errors.New("unknown search mode")

var modeNames = map[Mode]string{
	ModeLiteral: "normal",
	ModeGlob:    "glob",
	ModeRegex:   "regex",
}

// String returns the user-facing mode name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a user-facing name to a Mode. Empty selects ModeLiteral.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "literal":
		return ModeLiteral, nil
	case "glob":
		return ModeGlob, nil
	case "regex", "regexp":
		return ModeRegex, nil
	default:
		return ModeLiteral, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Query is a pattern plus the mode it is written in.
// An empty Pattern matches everything.
type Query struct {
	Pattern string
	Mode    Mode
}

// Matcher is a compiled Query. It is immutable and safe for concurrent use.
type Matcher struct {
	all   bool
	never bool
	lower string
	re    *regexp.Regexp
}

// Compile prepares q for repeated matching.
func Compile(q Query) *Matcher {
	if q.Pattern == "" {
		return &Matcher{all: true}
	}

	switch q.Mode {
	case ModeRegex:
		re, err := regexp.Compile("(?i)" + q.Pattern)
		if err != nil {
			return &Matcher{never: true}
		}
		return &Matcher{re: re}
	case ModeGlob:
		re, err := regexp.Compile("(?is)^" + globToRegex(q.Pattern) + "$")
		if err != nil {
			return &Matcher{never: true}
		}
		return &Matcher{re: re}
	case ModeLiteral:
		return &Matcher{lower: strings.ToLower(q.Pattern)}
	default:
		return &Matcher{never: true}
	}
}

// Match reports whether candidate satisfies the compiled query.
func (m *Matcher) Match(candidate string) bool {
	switch {
	case m.all:
		return true
	case m.never:
		return false
	case m.re != nil:
		return m.re.MatchString(candidate)
	}

	if strings.Contains(strings.ToLower(candidate), m.lower) {
		return true
	}
	return NewPhoneticIndex(candidate).Contains(m.lower)
}

// Matches is the one-shot form of Compile(q).Match(candidate).
func Matches(candidate string, q Query) bool {
	return Compile(q).Match(candidate)
}

// globToRegex converts a glob to a regex body: "*" is any run, "?" any one
// character, every other character is literal.
func globToRegex(pattern string) string {
	var b strings.Builder

	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	return b.String()
}
