package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/CaiJingLong/Tally/internal/backup"
	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/CaiJingLong/Tally/internal/dates"
	"github.com/CaiJingLong/Tally/internal/resource"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// uidNamespace seeds the name-based event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.UIDNamespace))

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // Path to a backup JSON file
	WebURL          string // Backup export endpoint
	Token           string // Bearer token for WebURL, may be empty
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D"), empty disables alarms
	WarnDays        int    // Resources with at most this many days left are counted as expiring
}

// Generator is the core service responsible for fetching and converting data.
type Generator struct {
	Clock   Clock         // Interface for time mocking.
	Fetcher BackupFetcher // Interface for network abstraction.

	// FormatSummary renders the event title. Nil uses config.FallbackSummary.
	FormatSummary func(name, group string) string

	// FormatDescription renders the event body. Nil omits the description.
	FormatDescription func(name string, expiry dates.CalendarDate) string
}

type syncStats struct {
	total, valid, expiring int
}

// RunSync executes the fetching, decoding, and generation pipeline.
// It returns the ICS data, the resources sorted by expiry, the number of
// resources expired or inside the warning window, and any error.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) ([]byte, []resource.Summary, int, error) {
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrSourceOpen, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	data, err := backup.Read(reader)
	if err != nil {
		return nil, nil, 0, err
	}

	ics, list, expiring, err := g.generateCalendar(ctx, data, cfg)
	if err != nil {
		return nil, nil, 0, err
	}

	log.InfoContext(ctx, config.MsgSyncFinished)
	return ics, list, expiring, nil
}

// acquireStream opens the data source based on the configuration mode.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.Token)
	default:
		return nil, fmt.Errorf("%s: %s", config.ErrModeUnsupport, cfg.Mode)
	}
}

// generateCalendar builds one all-day event per valid backup entry.
func (g *Generator) generateCalendar(ctx context.Context, data backup.Data, cfg SyncConfig) ([]byte, []resource.Summary, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Expiry days are calendar days in the user's zone; only DTSTAMP is UTC.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	stats := syncStats{total: len(data.Resources)}
	entries := make([]backup.Entry, 0, len(data.Resources))
	for _, e := range data.Resources {
		if err := e.Validate(); err != nil {
			slog.Warn(config.MsgSkippedEntry,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, e.Name,
				config.LogKeyError, err)
			continue
		}
		entries = append(entries, e)
	}
	stats.valid = len(entries)

	resources := backup.Data{Resources: entries}.ToResources(1, now)
	list := make([]resource.Summary, 0, len(resources))

	for _, r := range resources {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}

		s := r.View(now)
		list = append(list, s)

		if s.RemainingDays <= cfg.WarnDays {
			stats.expiring++
			slog.Debug(config.MsgExpiringSoon,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, s.Name,
				config.LogKeyExpiry, s.ExpiryDate.String(),
				config.LogKeyRemaining, s.RemainingDays)
		}

		event := g.createEvent(r, s.ExpiryDate, cfg.ReminderTrigger)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	resource.SortByExpiry(list)

	if len(cal.Children) == 0 {
		var buf bytes.Buffer
		buf.WriteString(config.StubVCalendar)
		g.logSuccess(stats)
		return buf.Bytes(), list, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats)
	return buf.Bytes(), list, stats.expiring, nil
}

// logSuccess logs the final statistics of the generation process.
func (g *Generator) logSuccess(stats syncStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.total),
			slog.Int(config.LogKeyValid, stats.valid),
			slog.Int(config.LogKeyExpiring, stats.expiring),
		),
	)
}

// createEvent builds the all-day event marking the expiry of r.
func (g *Generator) createEvent(r resource.Resource, expiry dates.CalendarDate, reminderTrigger string) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, EventUID(r), config.ICalDomain))

	name := r.Name
	if name == "" {
		name = config.FallbackName
	}

	summary := fallbackSummary(name, r.Group)
	if g.FormatSummary != nil {
		summary = g.FormatSummary(name, r.Group)
	}
	event.Props.SetText(config.PropSummary, summary)

	if g.FormatDescription != nil {
		event.Props.SetText(config.PropDescription, g.FormatDescription(name, expiry))
	}
	if r.Group != "" {
		event.Props.SetText(config.PropCategories, r.Group)
	}

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(expiry.Time())
	event.Props.Set(dtStartProp)

	if reminderTrigger != "" {
		addAlarm(event, reminderTrigger, summary)
	}
	return event
}

// EventUID is stable across refreshes and renewals: it depends on the
// resource identity, not on its expiry.
func EventUID(r resource.Resource) string {
	key := fmt.Sprintf("%s\x00%s\x00%d", r.Name, r.Group, r.CreatedAt.Unix())
	return uuid.NewSHA1(uidNamespace, []byte(key)).String()
}

func fallbackSummary(name, group string) string {
	if group == "" {
		return fmt.Sprintf(config.FallbackSummary, name)
	}
	return fmt.Sprintf(config.FallbackSummaryGroup, name, group)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
