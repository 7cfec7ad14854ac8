// Package locale loads the embedded translations and renders the user-facing
// strings of the expiry feed, the API and the CLI.
package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog holds every loaded translation.
type Catalog struct {
	bundle    *i18n.Bundle
	languages []string
}

// Load reads the embedded locale files. Files that fail to load are logged
// and skipped.
func Load() *Catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	c := &Catalog{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return c
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		c.languages = append(c.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}
	return c
}

// Languages lists the loaded language codes.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.languages...)
}

// For returns a Localizer for the given preferences, most preferred first.
// Each entry may be a tag or an Accept-Language header value. English is
// always the last resort.
func (c *Catalog) For(langs ...string) *Localizer {
	lang := config.DefaultLanguage
	for _, l := range langs {
		if strings.TrimSpace(l) != "" {
			lang = l
			break
		}
	}
	prefs := append(append([]string(nil), langs...), config.DefaultLanguage)
	return &Localizer{
		lang: lang,
		loc:  i18n.NewLocalizer(c.bundle, prefs...),
	}
}

// Localizer renders messages in one language. A nil Localizer returns keys.
type Localizer struct {
	lang string
	loc  *i18n.Localizer
}

// Lang is the requested language, used for date display.
func (l *Localizer) Lang() string {
	if l == nil {
		return config.DefaultLanguage
	}
	return l.lang
}

// Msg translates key, falling back to the key itself.
func (l *Localizer) Msg(key string) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: key})
}

// MsgData translates key with template data.
func (l *Localizer) MsgData(key string, data map[string]any) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// Plural translates a message with plural forms selected by count.
func (l *Localizer) Plural(key string, count int) string {
	return l.localize(&i18n.LocalizeConfig{
		MessageID:    key,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

// RemainingDays labels the days left before an expiry.
func (l *Localizer) RemainingDays(days int) string {
	if days <= 0 {
		return l.Msg(config.TKeyExpired)
	}
	return l.Plural(config.TKeyRemainingDays, days)
}

// EventSummary is the calendar event title for a resource.
func (l *Localizer) EventSummary(name, group string) string {
	if group == "" {
		return l.MsgData(config.TKeyEvtSummary, map[string]any{"Name": name})
	}
	return l.MsgData(config.TKeyEvtSummaryGroup, map[string]any{"Name": name, "Group": group})
}

// EventDescription is the calendar event body; date is already formatted.
func (l *Localizer) EventDescription(name, date string) string {
	return l.MsgData(config.TKeyEvtDescription, map[string]any{"Name": name, "Date": date})
}

func (l *Localizer) localize(lc *i18n.LocalizeConfig) string {
	if l == nil || l.loc == nil {
		return lc.MessageID
	}
	msg, err := l.loc.Localize(lc)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return lc.MessageID
	}
	return msg
}
