// Package cli implements the tally subcommands. Output goes to injected
// writers and "today" comes from an injected clock so every command is
// testable without a terminal.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/CaiJingLong/Tally/internal/dates"
	"github.com/CaiJingLong/Tally/internal/engine"
	"github.com/CaiJingLong/Tally/internal/locale"
	"github.com/CaiJingLong/Tally/internal/resource"
	"github.com/CaiJingLong/Tally/internal/search"
)

// ErrUsage marks errors caused by bad arguments; Run maps it to ExitCodeUsage.
var ErrUsage = errors.New("usage error")

// App holds the dependencies shared by all subcommands.
type App struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Clock   engine.Clock
	Catalog *locale.Catalog
	Lang    string

	// ConfigPath is the TOML file read by serve and by export for tokens.
	ConfigPath string

	// Fetcher downloads http(s) backups for export; nil uses engine.NewHTTPFetcher.
	Fetcher engine.BackupFetcher
}

// New returns an App bound to the process streams and the real clock.
func New(lang, configPath string) *App {
	return &App{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Clock:      engine.RealClock{},
		Catalog:    locale.Load(),
		Lang:       lang,
		ConfigPath: configPath,
	}
}

func (a *App) localizer() *locale.Localizer {
	if a.Catalog == nil {
		return nil
	}
	return a.Catalog.For(a.Lang)
}

// Run dispatches args to a subcommand and returns the process exit code.
// No subcommand means serve.
func (a *App) Run(ctx context.Context, args []string) int {
	cmd := config.CmdServe
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case config.CmdServe:
		err = a.Serve(ctx)
	case config.CmdParse:
		err = a.Parse(args)
	case config.CmdRenew:
		err = a.Renew(args)
	case config.CmdSearch:
		err = a.Search(args)
	case config.CmdExport:
		err = a.Export(ctx, args)
	case config.CmdRestore:
		err = a.Restore(args)
	default:
		err = fmt.Errorf("%w: %s: %q", ErrUsage, config.ErrUnknownCommand, cmd)
	}

	switch {
	case err == nil:
		return config.ExitCodeSuccess
	case errors.Is(err, flag.ErrHelp):
		return config.ExitCodeSuccess
	case errors.Is(err, ErrUsage):
		fmt.Fprintln(a.Stderr, err)
		fmt.Fprintln(a.Stderr, config.MsgUsage)
		return config.ExitCodeUsage
	default:
		fmt.Fprintln(a.Stderr, err)
		slog.Debug(config.ErrAppFailed,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyError, err)
		return config.ExitCodeError
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

// parseFlags wraps flag errors so Run reports them as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrUsage, config.ErrFlagParse, err)
	}
	return nil
}

// dateError turns a parse failure into the localized hint shown to users.
func (a *App) dateError(input string, err error) error {
	key := config.TKeyErrDateFormat
	if errors.Is(err, dates.ErrEmpty) {
		key = config.TKeyErrDateEmpty
	}
	return fmt.Errorf("%s (%q): %w", a.localizer().Msg(key), input, err)
}

// Parse prints the canonical and display forms of the date in args.
func (a *App) Parse(args []string) error {
	fs := a.newFlagSet(config.CmdParse)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	text := strings.Join(fs.Args(), " ")
	d, err := dates.Parse(text)
	if err != nil {
		return a.dateError(text, err)
	}

	loc := a.localizer()
	fmt.Fprintf(a.Stdout, "%s\t%s\n", dates.Canonical(d), dates.Display(d, loc.Lang()))
	return nil
}

// Renew computes a new expiry from -from and exactly one of -days, -years or -to.
func (a *App) Renew(args []string) error {
	fs := a.newFlagSet(config.CmdRenew)
	from := fs.String(config.FlagFrom, "", config.FlagDescFrom)
	nowText := fs.String(config.FlagNow, "", config.FlagDescNow)
	days := fs.Int(config.FlagDays, 0, config.FlagDescDays)
	years := fs.Int(config.FlagYears, 0, config.FlagDescYears)
	to := fs.String(config.FlagTo, "", config.FlagDescTo)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	loc := a.localizer()

	current, err := dates.Parse(*from)
	if err != nil {
		return a.dateError(*from, err)
	}

	clock := a.Clock
	if *nowText != "" {
		d, err := dates.Parse(*nowText)
		if err != nil {
			return a.dateError(*nowText, err)
		}
		clock = engine.FixedClock(d.Time())
	}
	now := clock.Now()

	var specs []dates.RenewalSpec
	if *days != 0 {
		specs = append(specs, dates.Days(*days))
	}
	if *years != 0 {
		specs = append(specs, dates.CalendarYears(*years))
	}
	if *to != "" {
		target, err := dates.Parse(*to)
		if err != nil {
			return a.dateError(*to, err)
		}
		specs = append(specs, dates.ExplicitDate{Date: target})
	}
	if len(specs) != 1 {
		return fmt.Errorf("%w: %s", ErrUsage, loc.Msg(config.TKeyErrRenewSpec))
	}
	if err := specs[0].Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrUsage, loc.Msg(config.TKeyErrRenewCount))
	}

	renewed := resource.Resource{ExpireAt: current.Time()}.Renew(specs[0], now)
	expiry := renewed.ExpireAt
	newDate := dates.FromUnix(expiry.Unix())

	fmt.Fprintln(a.Stdout, loc.MsgData(config.TKeyLblNewExpiry, map[string]any{
		"Date": dates.Display(newDate, loc.Lang()),
	}))
	fmt.Fprintf(a.Stdout, "%s\t%s\n", dates.Canonical(newDate), loc.RemainingDays(dates.RemainingDays(expiry, now)))
	return nil
}

// Search filters the resources of a backup file and prints them by expiry.
func (a *App) Search(args []string) error {
	fs := a.newFlagSet(config.CmdSearch)
	query := fs.String(config.FlagQuery, "", config.FlagDescQuery)
	modeName := fs.String(config.FlagMode, "", config.FlagDescMode)
	group := fs.String(config.FlagGroup, "", config.FlagDescGroup)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: %s: backup file", ErrUsage, config.ErrMissingArgument)
	}

	mode, err := search.ParseMode(*modeName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	data, err := readBackupFile(fs.Arg(0))
	if err != nil {
		return err
	}

	now := a.Clock.Now()
	list := make([]resource.Summary, 0, len(data.Resources))
	for _, r := range data.ToResources(1, now) {
		list = append(list, r.View(now))
	}

	matched := search.Filter(list, search.Query{Pattern: *query, Mode: mode}, *group)
	resource.SortByExpiry(matched)

	loc := a.localizer()
	if len(matched) == 0 {
		fmt.Fprintln(a.Stdout, loc.Msg(config.TKeyLblNoMatch))
		return nil
	}

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	for _, s := range matched {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Group, dates.Canonical(s.ExpiryDate), loc.RemainingDays(s.RemainingDays))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, loc.Plural(config.TKeyLblResourceCount, len(matched)))
	return nil
}
