package app

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStaticDir(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>editor</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	return dir
}

func TestSPAHandlerServesAssets(t *testing.T) {
	h := spaHandler(writeStaticDir(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/app.js", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
}

func TestSPAHandlerFallsBackToIndex(t *testing.T) {
	h := spaHandler(writeStaticDir(t))

	// Client-side routes have no file behind them; the bundle resolves
	// them after loading.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/room/r1", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "editor")
}
