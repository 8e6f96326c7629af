package sidebar

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemassist/assistant/backend/internal/service/assets"
	"github.com/chemassist/assistant/backend/internal/testutil"
)

func setupRouter(t *testing.T, files ...string) *chi.Mux {
	t.Helper()

	dir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0o644))
	}

	services, _ := testutil.Services(dir)
	r := chi.NewRouter()
	New(services.Assets, nil).RegisterRoutes(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	return resp
}

func TestSidebarReportsMissingAssets(t *testing.T) {
	r := setupRouter(t, "portrait.png")

	resp := get(r, "/sidebar")
	require.Equal(t, http.StatusOK, resp.Code)

	var sidebar assets.Sidebar
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sidebar))
	assert.Equal(t, "Chemistry Assistant", sidebar.AssistantName)
	require.NotNil(t, sidebar.Portrait)
	assert.True(t, sidebar.Portrait.Available)
	require.NotNil(t, sidebar.CV)
	assert.False(t, sidebar.CV.Available)
	assert.Len(t, sidebar.Errors, 2)
}

func TestAssetServedWithContentType(t *testing.T) {
	r := setupRouter(t, "portrait.png")

	resp := get(r, "/assets/portrait.png")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, "content of portrait.png", resp.Body.String())
	assert.Empty(t, resp.Header().Get("Content-Disposition"))
}

func TestCVIsAttachment(t *testing.T) {
	r := setupRouter(t, "cv.pdf")

	resp := get(r, "/assets/cv.pdf")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cv.pdf"`, resp.Header().Get("Content-Disposition"))
}

func TestMissingOrUnknownAssetIs404(t *testing.T) {
	r := setupRouter(t)

	assert.Equal(t, http.StatusNotFound, get(r, "/assets/cv.pdf").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/assets/secrets.txt").Code)
}
