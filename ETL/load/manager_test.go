package load

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/db_restore/ETL/fakeremote"
	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

func newTestManager(baseURL string, timeout time.Duration) (*LoadManager, *bytes.Buffer) {
	var out bytes.Buffer
	urlFor := func(category string) string {
		return baseURL + fakeremote.ImportPathPrefix + category
	}
	loader := NewHTTPLoader(urlFor, timeout, utils.NewNopLogger())
	return NewLoadManager(loader, utils.NewNopLogger(), utils.NewConsole(&out)), &out
}

func login(t *testing.T, srv *fakeremote.Server) *Session {
	t.Helper()
	auth, _ := newTestAuthenticator(srv.URL + fakeremote.AuthPath)
	session, err := auth.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	return session
}

func records(n int) []models.Record {
	result := make([]models.Record, n)
	for i := range result {
		result[i] = models.Record{"id": i + 1, "name": fmt.Sprintf("record-%d", i+1)}
	}
	return result
}

func TestLoadSkipsEmptyCategories(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	manager, out := newTestManager(srv.URL, 5*time.Second)
	result := manager.Load(context.Background(), models.Dataset{
		models.CategoryUsers:    records(2),
		models.CategoryPosts:    nil,
		models.CategoryFeedback: {},
	}, login(t, srv))

	assert.Equal(t, []string{models.CategoryUsers}, srv.Categories())
	assert.True(t, result.Success())
	require.Len(t, result.Results, 1)
	assert.Equal(t, models.ImportStats{Imported: 2, Failed: 0, Errors: nil}, result.Results[0].Stats)
	assert.Contains(t, out.String(), "Skipping posts: no data")
	assert.Contains(t, out.String(), "Skipping feedback: no data")
}

func TestLoadRespectsCategoryOrder(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	dataset := models.Dataset{}
	for i := len(models.Categories) - 1; i >= 0; i-- {
		dataset[models.Categories[i]] = records(1)
	}

	manager, _ := newTestManager(srv.URL, 5*time.Second)
	result := manager.Load(context.Background(), dataset, login(t, srv))

	assert.Equal(t, models.Categories, srv.Categories())
	assert.Equal(t, len(models.Categories), result.TotalImported)
}

func TestLoadSendsPayloadAndHeaders(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	manager, _ := newTestManager(srv.URL, 5*time.Second)
	manager.Load(context.Background(), models.Dataset{
		models.CategoryUserPersonas: {{"userUid": "ada", "personaAlias": "explorer", "weight": 0.5}},
	}, login(t, srv))

	requests := srv.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "client", requests[0].Origin)
	assert.Equal(t, []map[string]interface{}{
		{"userUid": "ada", "personaAlias": "explorer", "weight": 0.5},
	}, requests[0].Records)
}

func TestLoadReportsRemoteValidationErrors(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()
	srv.SetResponse(models.CategoryPosts, fakeremote.Response{
		Status: http.StatusOK,
		Body:   `{"posts": {"imported": 5, "failed": 2, "errors": ["a", "b", "c", "d"]}}`,
	})

	manager, out := newTestManager(srv.URL, 5*time.Second)
	result := manager.Load(context.Background(), models.Dataset{
		models.CategoryPosts: records(7),
	}, login(t, srv))

	assert.True(t, result.Success())
	stats, ok := result.Stats(models.CategoryPosts)
	require.True(t, ok)
	assert.Equal(t, models.ImportStats{Imported: 5, Failed: 2, Errors: []string{"a", "b", "c", "d"}}, stats)
	assert.Equal(t, 5, result.TotalImported)
	assert.Equal(t, 2, result.TotalFailed)

	output := out.String()
	assert.Contains(t, output, "⚠ 5 imported, 2 failed")
	assert.Contains(t, output, "      - a\n      - b\n      - c\n")
	assert.NotContains(t, output, "- d")
	assert.Contains(t, output, "... and 1 more errors")
}

func TestLoadEndpointStatusFailure(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()
	srv.SetResponse(models.CategoryClassrooms, fakeremote.Response{
		Status: http.StatusInternalServerError,
		Body:   `{"message": "boom"}`,
	})

	manager, out := newTestManager(srv.URL, 5*time.Second)
	result := manager.Load(context.Background(), models.Dataset{
		models.CategoryClassrooms: records(10),
		models.CategoryStudy:      records(1),
	}, login(t, srv))

	assert.False(t, result.Success())
	stats, _ := result.Stats(models.CategoryClassrooms)
	assert.Equal(t, models.ImportStats{Imported: 0, Failed: 10, Errors: []string{"HTTP 500"}}, stats)
	assert.Equal(t, []models.FailedEndpoint{{Category: models.CategoryClassrooms, Reason: "Status 500"}}, result.FailedEndpoints)

	// Следующие категории всё равно загружаются
	assert.Equal(t, []string{models.CategoryClassrooms, models.CategoryStudy}, srv.Categories())
	assert.Equal(t, 1, result.TotalImported)
	assert.Equal(t, 10, result.TotalFailed)

	assert.Contains(t, out.String(), "✗ Error 500")
	assert.Contains(t, out.String(), "WARNING: 1 endpoint(s) had issues:")
	assert.Contains(t, out.String(), "- classrooms: Status 500")
}

func TestLoadTimeout(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()
	srv.SetResponse(models.CategoryUsers, fakeremote.Response{Delay: 2 * time.Second})

	manager, out := newTestManager(srv.URL, 50*time.Millisecond)
	result := manager.Load(context.Background(), models.Dataset{
		models.CategoryUsers: records(3),
	}, login(t, srv))

	stats, _ := result.Stats(models.CategoryUsers)
	assert.Equal(t, models.ImportStats{Imported: 0, Failed: 3, Errors: []string{"Timeout"}}, stats)
	assert.Equal(t, []models.FailedEndpoint{{Category: models.CategoryUsers, Reason: "Request timeout"}}, result.FailedEndpoints)
	assert.Contains(t, out.String(), "✗ Timeout")
}

func TestLoadTransportError(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	baseURL := srv.URL
	srv.Close()

	manager, out := newTestManager(baseURL, 5*time.Second)
	result := manager.Load(context.Background(), models.Dataset{
		models.CategoryTopics: records(4),
	}, nil)

	require.Len(t, result.FailedEndpoints, 1)
	reason := result.FailedEndpoints[0].Reason
	assert.NotEqual(t, "Request timeout", reason)
	assert.True(t, strings.Contains(reason, "connect") || strings.Contains(reason, "refused"), reason)

	stats, _ := result.Stats(models.CategoryTopics)
	assert.Equal(t, 4, stats.Failed)
	assert.Equal(t, []string{reason}, stats.Errors)
	assert.Contains(t, out.String(), "✗ Error: ")
}

func TestLoadInvalidResponseBody(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()
	srv.SetResponse(models.CategorySections, fakeremote.Response{Status: http.StatusOK, Body: "<html>oops</html>"})

	manager, _ := newTestManager(srv.URL, 5*time.Second)
	result := manager.Load(context.Background(), models.Dataset{
		models.CategorySections: records(2),
	}, login(t, srv))

	assert.False(t, result.Success())
	stats, _ := result.Stats(models.CategorySections)
	assert.Equal(t, 2, stats.Failed)
}

func TestLoadWithoutSessionIsRejected(t *testing.T) {
	srv := fakeremote.New("admin", "secret")
	defer srv.Close()

	manager, _ := newTestManager(srv.URL, 5*time.Second)
	result := manager.Load(context.Background(), models.Dataset{
		models.CategoryFeedback: records(1),
	}, nil)

	assert.Equal(t, []models.FailedEndpoint{{Category: models.CategoryFeedback, Reason: "Status 401"}}, result.FailedEndpoints)
}
