package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/CaiJingLong/Tally/internal/backup"
	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/CaiJingLong/Tally/internal/engine"
	"github.com/CaiJingLong/Tally/internal/resource"
)

// Export reads a backup from a file or an http(s) URL and writes it again as
// a current-version document named after the export time.
func (a *App) Export(ctx context.Context, args []string) error {
	fs := a.newFlagSet(config.CmdExport)
	dir := fs.String(config.FlagDir, config.DefaultExportDir, config.FlagDescDir)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: %s: backup file or URL", ErrUsage, config.ErrMissingArgument)
	}

	data, err := a.readBackup(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	now := a.Clock.Now()
	out := backup.Export(data.ToResources(1, now), now)
	path := filepath.Join(*dir, backup.FileName(now))
	if err := writeBackupFile(path, out); err != nil {
		return err
	}
	a.printSaved(path, len(out.Resources))
	return nil
}

// Restore merges an incoming backup into an existing one. The existing file
// may be absent, which restores into an empty list.
func (a *App) Restore(args []string) error {
	fs := a.newFlagSet(config.CmdRestore)
	modeName := fs.String(config.FlagMode, config.BackupModeOverwrite, config.FlagDescRestore)
	outPath := fs.String(config.FlagOut, "", config.FlagDescOut)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: %s: existing and incoming backup files", ErrUsage, config.ErrMissingArgument)
	}

	mode, err := backup.ParseMode(*modeName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	now := a.Clock.Now()
	existingPath, incomingPath := fs.Arg(0), fs.Arg(1)

	var existing []resource.Resource
	current, err := readBackupFile(existingPath)
	switch {
	case err == nil:
		existing = current.ToResources(1, now)
	case errors.Is(err, os.ErrNotExist):
	default:
		return err
	}

	incoming, err := readBackupFile(incomingPath)
	if err != nil {
		return err
	}

	merged, err := backup.Restore(existing, incoming, mode, now)
	if err != nil {
		return err
	}

	target := existingPath
	if *outPath != "" {
		target = *outPath
	}
	out := backup.Export(merged, now)
	if err := writeBackupFile(target, out); err != nil {
		return err
	}
	a.printSaved(target, len(out.Resources))
	return nil
}

// readBackup fetches http(s) sources with the token configured for the web
// source and opens anything else as a local file.
func (a *App) readBackup(ctx context.Context, src string) (backup.Data, error) {
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS) {
		return readBackupFile(src)
	}

	settings, err := config.LoadSettings(a.ConfigPath)
	if err != nil {
		return backup.Data{}, err
	}
	token, err := settings.Source.ResolveToken()
	if err != nil {
		return backup.Data{}, err
	}

	fetcher := a.Fetcher
	if fetcher == nil {
		fetcher = engine.NewHTTPFetcher()
	}
	body, err := fetcher.Fetch(ctx, src, token)
	if err != nil {
		return backup.Data{}, fmt.Errorf("%s: %w", config.ErrSourceOpen, err)
	}
	defer func() { _ = body.Close() }()
	return backup.Decode(body)
}

func readBackupFile(path string) (backup.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return backup.Data{}, err
	}
	defer func() { _ = f.Close() }()
	return backup.Decode(f)
}

func writeBackupFile(path string, d backup.Data) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return backup.Encode(f, d)
}

func (a *App) printSaved(path string, count int) {
	loc := a.localizer()
	fmt.Fprintln(a.Stdout, loc.MsgData(config.TKeyLblSaved, map[string]any{"Path": path}))
	fmt.Fprintln(a.Stdout, loc.Plural(config.TKeyLblResourceCount, count))
}
