package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/LilVoxy/db_restore/ETL/config"
	"github.com/LilVoxy/db_restore/ETL/extractors"
	"github.com/LilVoxy/db_restore/ETL/fakeremote"
	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// fakeSource возвращает заранее заданные данные или ошибку
type fakeSource struct {
	dataset models.Dataset
	err     error
	calls   int
	// onExtract вызывается перед возвратом результата
	onExtract func()
}

func (s *fakeSource) ExtractAll(context.Context) (models.Dataset, error) {
	s.calls++
	if s.onExtract != nil {
		s.onExtract()
	}
	return s.dataset, s.err
}

func testConfig(t *testing.T, baseURL string) config.RestoreConfig {
	t.Helper()
	cfg := config.GetConfig()
	cfg.BaseURL = baseURL
	cfg.AdminUID = "admin"
	cfg.AdminPassword = "secret"
	cfg.RequestTimeout = 5 * time.Second
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "data.json")
	return cfg
}

func newTestRunner(t *testing.T, cfg config.RestoreConfig, input string, primary extractors.Source) (*RestoreRunner, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	runner := NewRestoreRunner(cfg, utils.NewNopLogger(), &out, strings.NewReader(input), false)
	runner.primary = primary
	return runner, &out
}

func userRecords(uids ...string) []models.Record {
	result := make([]models.Record, 0, len(uids))
	for _, uid := range uids {
		result = append(result, models.Record{"uid": uid})
	}
	return result
}

func TestExecuteUploadsAfterConfirmation(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	source := &fakeSource{dataset: models.Dataset{
		models.CategorySections: {{"abbreviation": "CSA"}, {"abbreviation": "DS"}},
		models.CategoryUsers:    userRecords("admin", "ada", "grace"),
	}}
	runner, out := newTestRunner(t, testConfig(t, srv.URL), "y\n", source)

	code := runner.Execute(context.Background())

	assert.Equal(t, exitOK, code)
	assert.Equal(t, []string{models.CategorySections, models.CategoryUsers}, srv.Categories())

	requests := srv.Requests()
	assert.Len(t, requests[0].Records, 1)
	assert.Len(t, requests[1].Records, 2)

	output := out.String()
	assert.Contains(t, output, "- users: 3 records")
	assert.Contains(t, output, "- users: 2 records")
	assert.Contains(t, output, "✓ Data upload complete!")
	assert.Contains(t, output, "✓ users: 2 imported, 0 failed")
}

func TestExecuteAbortsUnlessExactlyY(t *testing.T) {
	for _, input := range []string{"Y\n", "yes\n", "n\n", "\n", ""} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			srv := fakeremote.New("admin", "secret")
			defer srv.Close()

			source := &fakeSource{dataset: models.Dataset{models.CategoryUsers: userRecords("ada")}}
			runner, out := newTestRunner(t, testConfig(t, srv.URL), input, source)

			code := runner.Execute(context.Background())

			assert.Equal(t, exitOK, code)
			assert.Empty(t, srv.Requests())
			assert.Contains(t, out.String(), "Aborted.")
		})
	}
}

func TestExecuteAcceptsTrimmedY(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	source := &fakeSource{dataset: models.Dataset{models.CategoryUsers: userRecords("ada")}}
	runner, _ := newTestRunner(t, testConfig(t, srv.URL), "  y  \n", source)

	assert.Equal(t, exitOK, runner.Execute(context.Background()))
	assert.Len(t, srv.Requests(), 1)
}

func TestExecuteAssumeYesSkipsPrompt(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	source := &fakeSource{dataset: models.Dataset{models.CategoryUsers: userRecords("ada")}}
	runner, out := newTestRunner(t, testConfig(t, srv.URL), "", source)
	runner.assumeYes = true

	assert.Equal(t, exitOK, runner.Execute(context.Background()))
	assert.Len(t, srv.Requests(), 1)
	assert.Contains(t, out.String(), "y (--yes)")
}

func TestExecuteAuthenticationFailure(t *testing.T) {
	srv := fakeremote.New("admin", "other-password")
	defer srv.Close()

	source := &fakeSource{dataset: models.Dataset{models.CategoryUsers: userRecords("ada")}}
	runner, out := newTestRunner(t, testConfig(t, srv.URL), "y\n", source)

	code := runner.Execute(context.Background())

	assert.Equal(t, exitFailure, code)
	assert.Equal(t, 0, source.calls)
	assert.Empty(t, srv.Requests())
	assert.Contains(t, out.String(), "✗ Authentication failed")
}

func TestExecuteFallsBackToSnapshot(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, os.WriteFile(cfg.SnapshotPath, []byte(`[{"uid": "ada"}, {"uid": "niko"}]`), 0o644))

	source := &fakeSource{err: &models.DataReadError{Err: errors.New("no such table: users")}}
	runner, out := newTestRunner(t, cfg, "y\n", source)

	code := runner.Execute(context.Background())

	assert.Equal(t, exitOK, code)
	assert.Equal(t, 1, source.calls)
	assert.Contains(t, out.String(), "Trying to read from JSON backup instead...")

	requests := srv.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, models.CategoryUsers, requests[0].Category)
	assert.Equal(t, []map[string]interface{}{{"uid": "ada"}}, requests[0].Records)
}

func TestExecuteFailsWhenBothReadsFail(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	source := &fakeSource{err: &models.DataReadError{Err: errors.New("database is locked")}}
	runner, out := newTestRunner(t, testConfig(t, srv.URL), "y\n", source)

	code := runner.Execute(context.Background())

	assert.Equal(t, exitFailure, code)
	assert.Empty(t, srv.Requests())
	assert.Contains(t, out.String(), "✗ Failed to read local data")
}

func TestExecuteInterruptedReadSkipsFallback(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	primary := &fakeSource{
		err:       &models.DataReadError{Err: context.Canceled},
		onExtract: cancel,
	}
	fallback := &fakeSource{dataset: models.Dataset{models.CategoryUsers: userRecords("ada")}}
	runner, out := newTestRunner(t, testConfig(t, srv.URL), "y\n", primary)
	runner.fallback = fallback

	code := runner.Execute(ctx)

	assert.Equal(t, exitFailure, code)
	assert.Equal(t, 0, fallback.calls)
	assert.Empty(t, srv.Requests())
	assert.Contains(t, out.String(), "Interrupted, not falling back to JSON backup")
	assert.NotContains(t, out.String(), "Trying to read from JSON backup instead...")
}

func TestExecuteEndpointFailureFailsRun(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()
	srv.SetResponse(models.CategoryClassrooms, fakeremote.Response{Status: http.StatusInternalServerError})

	classrooms := make([]models.Record, 10)
	for i := range classrooms {
		classrooms[i] = models.Record{"name": fmt.Sprintf("Period %d", i+1), "ownerUid": "bob"}
	}
	source := &fakeSource{dataset: models.Dataset{
		models.CategoryUsers:      userRecords("bob"),
		models.CategoryClassrooms: classrooms,
	}}
	runner, out := newTestRunner(t, testConfig(t, srv.URL), "y\n", source)

	code := runner.Execute(context.Background())

	assert.Equal(t, exitFailure, code)
	output := out.String()
	assert.Contains(t, output, "✗ Data upload had failures!")
	assert.Contains(t, output, "✗ classrooms: 0 imported, 10 failed")
	assert.Contains(t, output, "✓ users: 1 imported, 0 failed")
}

func TestExecuteRemoteValidationFailuresDoNotFailRun(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()
	srv.SetResponse(models.CategoryPosts, fakeremote.Response{
		Body: `{"posts": {"imported": 5, "failed": 2, "errors": ["a", "b", "c", "d"]}}`,
	})

	posts := make([]models.Record, 7)
	for i := range posts {
		posts[i] = models.Record{"title": fmt.Sprintf("post %d", i), "userUid": "ada"}
	}
	source := &fakeSource{dataset: models.Dataset{models.CategoryPosts: posts}}
	runner, out := newTestRunner(t, testConfig(t, srv.URL), "y\n", source)

	code := runner.Execute(context.Background())

	assert.Equal(t, exitOK, code)
	output := out.String()
	assert.Contains(t, output, "... and 1 more errors")
	assert.Contains(t, output, "⚠ posts: 5 imported, 2 failed")
}

func TestSnapshotWritesFallbackFile(t *testing.T) {
	schema, err := os.ReadFile(filepath.Join("extractors", "testdata", "schema.sql"))
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "user_management.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := testConfig(t, "http://unused.local")
	cfg.Source = config.DatabaseConfig{Driver: "sqlite", Path: dbPath}
	out := filepath.Join(t.TempDir(), "data.json")

	var buf bytes.Buffer
	require.NoError(t, Snapshot(context.Background(), cfg, utils.NewNopLogger(), &buf, out))

	dataset, err := extractors.ReadSnapshot(out)
	require.NoError(t, err)
	assert.Len(t, dataset[models.CategoryUsers], 3)
	assert.Equal(t, "ada", dataset[models.CategoryMicroblogs][0]["userUid"])
	assert.Contains(t, buf.String(), "Snapshot written to")
}
