package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_NAME", "jobctl-test")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "0")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("REDIS_HOST", "127.0.0.1")
	t.Setenv("REDIS_PORT", "1")
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateAndSeed(t *testing.T) {
	setEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied (sqlite)")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "job postings in store: 6")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "job postings in store: 6")
}

func TestMatchFlags(t *testing.T) {
	setEnv(t)

	_, err := run(t, "match")
	assert.ErrorContains(t, err, "exactly one of")

	_, err = run(t, "match", "--all", "--claimant", "x")
	assert.ErrorContains(t, err, "exactly one of")

	_, err = run(t, "match", "--claimant", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid --claimant")

	out, err := run(t, "match", "--all")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestScrapeUsesRemoteFeed(t *testing.T) {
	setEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jobs": []map[string]any{
				{"title": "Go Developer", "job_url": "https://jobs.example.com/go-1", "location": "Leeds"},
				{"title": "No URL"},
			},
		})
	}))
	defer srv.Close()
	t.Setenv("SCRAPER_REMOTE_URL", srv.URL)

	out, err := run(t, "scrape", "--query", "go developer", "--location", "leeds")
	require.NoError(t, err)

	var sum struct {
		Source  string `json:"source"`
		Found   int    `json:"found"`
		Created int    `json:"created"`
		Failed  int    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "Remote", sum.Source)
	assert.Equal(t, 2, sum.Found)
	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 1, sum.Failed)
}

func TestConfigFileAndMissingEnv(t *testing.T) {
	dir := setEnv(t)
	os.Unsetenv("APP_NAME")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "APP_NAME")

	path := filepath.Join(dir, "jobctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME: from-file\n"), 0o600))
	out, err := run(t, "--config", path, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
}
