package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/CaiJingLong/Tally/internal/backup"
	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const incomingJSON = `{"version":"1.1","export_at":1,"resources":[
	{"name":"ssl","group":"Let's Encrypt","expire_at":1767225600,"created_at":0}
]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))
	return path
}

func readDoc(t *testing.T, path string) backup.Data {
	t.Helper()
	data, err := readBackupFile(path)
	require.NoError(t, err)
	return data
}

func names(d backup.Data) []string {
	out := make([]string, len(d.Resources))
	for i, e := range d.Resources {
		out[i] = e.Name
	}
	return out
}

func TestRun_Export_LocalFile(t *testing.T) {
	src := writeBackup(t)
	dir := t.TempDir()

	app, stdout, stderr := newTestApp("")
	code := app.Run(context.Background(), []string{"export", "-dir", dir, src})
	require.Equal(t, config.ExitCodeSuccess, code, stderr.String())

	want := filepath.Join(dir, "tally-backup-20250601-120000.json")
	assert.Equal(t, "Saved to "+want+"\n3 resources\n", stdout.String())

	doc := readDoc(t, want)
	assert.Equal(t, config.BackupVersion, doc.Version)
	assert.Equal(t, testNow.Unix(), doc.ExportAt)
	assert.Equal(t, []string{"云服务器", "cdn", "db.example.com"}, names(doc))
}

func TestRun_Export_URL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(config.HeaderAuthorization), "no token is configured")
		if r.URL.Path != "/api/backup/export" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set(config.HeaderContentType, config.MimeJSON)
		_, _ = w.Write([]byte(incomingJSON))
	}))
	defer ts.Close()

	t.Run("Downloads and rewrites", func(t *testing.T) {
		dir := t.TempDir()
		app, stdout, stderr := newTestApp("zh")
		code := app.Run(context.Background(), []string{"export", "-dir", dir, ts.URL + "/api/backup/export"})
		require.Equal(t, config.ExitCodeSuccess, code, stderr.String())

		doc := readDoc(t, filepath.Join(dir, backup.FileName(testNow)))
		assert.Equal(t, config.BackupVersion, doc.Version)
		assert.Equal(t, []string{"ssl"}, names(doc))
		assert.Contains(t, stdout.String(), "共 1 个资源")
	})

	t.Run("Server error", func(t *testing.T) {
		app, stdout, stderr := newTestApp("")
		code := app.Run(context.Background(), []string{"export", "-dir", t.TempDir(), ts.URL + "/missing"})
		assert.Equal(t, config.ExitCodeError, code)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), config.ErrSourceOpen)
	})
}

func TestRun_Restore(t *testing.T) {
	t.Run("Append writes back to the existing file", func(t *testing.T) {
		existing := writeBackup(t)
		incoming := writeFile(t, t.TempDir(), "incoming.json", incomingJSON)

		app, stdout, stderr := newTestApp("")
		code := app.Run(context.Background(), []string{"restore", "-mode", "append", existing, incoming})
		require.Equal(t, config.ExitCodeSuccess, code, stderr.String())

		assert.Equal(t, "Saved to "+existing+"\n4 resources\n", stdout.String())
		doc := readDoc(t, existing)
		assert.Equal(t, []string{"云服务器", "cdn", "db.example.com", "ssl"}, names(doc))
		assert.Equal(t, testNow.Unix(), doc.Resources[3].CreatedAt, "missing creation time becomes now")
	})

	t.Run("Overwrite to another file keeps the original", func(t *testing.T) {
		existing := writeBackup(t)
		incoming := writeFile(t, t.TempDir(), "incoming.json", incomingJSON)
		out := filepath.Join(t.TempDir(), "merged.json")

		app, _, stderr := newTestApp("")
		code := app.Run(context.Background(), []string{"restore", "-o", out, existing, incoming})
		require.Equal(t, config.ExitCodeSuccess, code, stderr.String())

		assert.Equal(t, []string{"ssl"}, names(readDoc(t, out)))
		assert.Len(t, readDoc(t, existing).Resources, 3)
	})

	t.Run("Missing existing file starts empty", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, "new.json")
		incoming := writeFile(t, dir, "incoming.json", incomingJSON)

		app, _, stderr := newTestApp("")
		code := app.Run(context.Background(), []string{"restore", "-mode", "append", existing, incoming})
		require.Equal(t, config.ExitCodeSuccess, code, stderr.String())
		assert.Equal(t, []string{"ssl"}, names(readDoc(t, existing)))
	})

	t.Run("Unsupported incoming version leaves existing untouched", func(t *testing.T) {
		existing := writeBackup(t)
		before, err := os.ReadFile(existing)
		require.NoError(t, err)
		incoming := writeFile(t, t.TempDir(), "incoming.json", `{"version":"2.0","resources":[]}`)

		app, _, stderr := newTestApp("")
		code := app.Run(context.Background(), []string{"restore", existing, incoming})
		assert.Equal(t, config.ExitCodeError, code)
		assert.Contains(t, stderr.String(), config.ErrBackupVersion)

		after, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestRun_Backup_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Export without source", []string{"export"}},
		{"Restore with one file", []string{"restore", "a.json"}},
		{"Restore with unknown mode", []string{"restore", "-mode", "merge", "a.json", "b.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, stdout, _ := newTestApp("")
			assert.Equal(t, config.ExitCodeUsage, app.Run(context.Background(), tt.args))
			assert.Empty(t, stdout.String())
		})
	}
}
