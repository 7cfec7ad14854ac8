// Package backup reads and writes the portable JSON document used to move
// resources between installations, and merges such a document into an
// existing list.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/CaiJingLong/Tally/internal/resource"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrInvalid     = errors.New(config.ErrBackupInvalid)
	ErrVersion     = errors.New(config.ErrBackupVersion)
	ErrRestoreMode = errors.New(config.ErrBackupMode)
)

// Mode selects how Restore combines a document with existing resources.
type Mode string

const (
	ModeOverwrite Mode = config.BackupModeOverwrite
	ModeAppend    Mode = config.BackupModeAppend
)

// ParseMode accepts "overwrite" and "append"; empty means overwrite.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeOverwrite:
		return ModeOverwrite, nil
	case ModeAppend:
		return ModeAppend, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrRestoreMode, s)
	}
}

// Data is the backup document.
type Data struct {
	Version   string  `json:"version"`
	ExportAt  int64   `json:"export_at"`
	Resources []Entry `json:"resources"`
}

// Entry is one resource inside a backup. Timestamps are Unix seconds.
type Entry struct {
	Name      string `json:"name"`
	Group     string `json:"group"`
	ExpireAt  int64  `json:"expire_at"`
	CreatedAt int64  `json:"created_at"`
}

// Export builds a document from list, stamped with now.
func Export(list []resource.Resource, now time.Time) Data {
	entries := make([]Entry, 0, len(list))
	for _, r := range list {
		entries = append(entries, Entry{
			Name:      r.Name,
			Group:     r.Group,
			ExpireAt:  r.ExpireAt.Unix(),
			CreatedAt: r.CreatedAt.Unix(),
		})
	}
	return Data{
		Version:   config.BackupVersion,
		ExportAt:  now.Unix(),
		Resources: entries,
	}
}

// Encode writes d as indented JSON.
func Encode(w io.Writer, d Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", config.BackupJSONIndent)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("%s: %w", config.ErrBackupEncode, err)
	}
	return nil
}

// Decode reads and validates a document.
func Decode(r io.Reader) (Data, error) {
	d, err := Read(r)
	if err != nil {
		return Data{}, err
	}
	if err := d.Validate(); err != nil {
		return Data{}, err
	}
	return d, nil
}

// Read decodes a document and checks only its version. Callers that want
// to skip bad entries instead of rejecting the document use Entry.Validate.
func Read(r io.Reader) (Data, error) {
	var d Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Data{}, fmt.Errorf("%s: %w", config.ErrBackupDecode, err)
	}
	if !strings.HasPrefix(d.Version, config.BackupVersionPrefix) {
		return Data{}, fmt.Errorf("%w: %q", ErrVersion, d.Version)
	}
	return d, nil
}

// Validate checks the version and every entry.
func (d Data) Validate() error {
	if !strings.HasPrefix(d.Version, config.BackupVersionPrefix) {
		return fmt.Errorf("%w: %q", ErrVersion, d.Version)
	}
	for i, e := range d.Resources {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("resource %d: %w", i, err)
		}
	}
	return nil
}

// Validate requires a name and a positive expiry.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if e.ExpireAt <= 0 {
		return fmt.Errorf("%w: missing expiry", ErrInvalid)
	}
	return nil
}

// ToResources converts the entries to resources with IDs starting at firstID.
// Timestamps are kept in UTC; a missing creation time becomes now.
func (d Data) ToResources(firstID uint, now time.Time) []resource.Resource {
	out := make([]resource.Resource, 0, len(d.Resources))
	for i, e := range d.Resources {
		created := now
		if e.CreatedAt > 0 {
			created = time.Unix(e.CreatedAt, 0).UTC()
		}
		out = append(out, resource.Resource{
			ID:        firstID + uint(i),
			Name:      e.Name,
			Group:     e.Group,
			ExpireAt:  time.Unix(e.ExpireAt, 0).UTC(),
			CreatedAt: created,
		})
	}
	return out
}

// Restore merges d into existing. Overwrite replaces the list; append keeps
// existing resources and numbers the imported ones after the highest ID.
// existing is never modified.
func Restore(existing []resource.Resource, d Data, mode Mode, now time.Time) ([]resource.Resource, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var merged []resource.Resource
	switch mode {
	case ModeOverwrite:
		merged = d.ToResources(1, now)
	case ModeAppend:
		var maxID uint
		for _, r := range existing {
			maxID = max(maxID, r.ID)
		}
		merged = make([]resource.Resource, 0, len(existing)+len(d.Resources))
		merged = append(merged, existing...)
		merged = append(merged, d.ToResources(maxID+1, now)...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrRestoreMode, mode)
	}

	slog.Info(config.MsgRestored,
		config.LogKeyMode, string(mode),
		config.LogKeyImported, len(d.Resources),
		config.LogKeyTotal, len(merged),
		config.LogKeyComponent, config.CompBackup)
	return merged, nil
}

// FileName is the suggested download name for an export made at now.
func FileName(now time.Time) string {
	return config.BackupFilePrefix + now.Format("20060102-150405") + ".json"
}
