package cli

import (
	"context"

	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/CaiJingLong/Tally/internal/dates"
	"github.com/CaiJingLong/Tally/internal/engine"
	"github.com/CaiJingLong/Tally/internal/metrics"
	"github.com/CaiJingLong/Tally/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Serve loads the configuration and runs the feed server and the refresh
// worker until ctx is cancelled or either of them fails.
func (a *App) Serve(ctx context.Context) error {
	settings, err := config.LoadSettings(a.ConfigPath)
	if err != nil {
		return err
	}
	if a.Lang != "" {
		settings.Language = a.Lang
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return a.serve(ctx, settings, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func (a *App) serve(ctx context.Context, settings config.Settings, reg prometheus.Registerer, gatherer prometheus.Gatherer) error {
	token, err := settings.Source.ResolveToken()
	if err != nil {
		return err
	}

	m := metrics.New(reg)
	loc := a.Catalog.For(settings.Language)

	srv := server.NewCalendarServer(settings.Server.Port)
	srv.Catalog = a.Catalog
	srv.Metrics = m
	srv.Gatherer = gatherer

	worker := &engine.Worker{
		Generator: &engine.Generator{
			Clock:         a.Clock,
			Fetcher:       engine.NewHTTPFetcher(),
			FormatSummary: loc.EventSummary,
			FormatDescription: func(name string, expiry dates.CalendarDate) string {
				return loc.EventDescription(name, dates.Display(expiry, loc.Lang()))
			},
		},
		Config: engine.SyncConfig{
			Mode:            settings.Source.Mode,
			LocalPath:       settings.Source.LocalPath,
			WebURL:          settings.Source.WebURL,
			Token:           token,
			ReminderTrigger: settings.Reminder.Trigger(),
			WarnDays:        settings.Sync.WarnDays,
		},
		Interval:  settings.Interval(),
		Publisher: srv,
		Metrics:   m,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(ctx) })
	g.Go(func() error { return worker.Run(ctx) })
	return g.Wait()
}
