package webui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// chdirToSiteFixture builds a temp working directory holding ./site with one
// servable page and a sibling directory that must never be reachable.
func chdirToSiteFixture(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	siteDir := filepath.Join(tempDir, "site")
	require.NoError(t, os.MkdirAll(siteDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(siteDir, "index.html"), []byte("<html>Valid</html>"), 0644))

	secretDir := filepath.Join(tempDir, "site-secret")
	require.NoError(t, os.MkdirAll(secretDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(secretDir, "secret.html"), []byte("SECRET"), 0644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
}

func TestSiteHandler_ServesIndex(t *testing.T) {
	chdirToSiteFixture(t)
	webUI := &WebUI{}

	for _, path := range []string{"/site/", "/site/index.html"} {
		rr := httptest.NewRecorder()
		webUI.siteHandler(rr, httptest.NewRequest(http.MethodGet, path, nil))

		if rr.Code != http.StatusOK && rr.Code != http.StatusMovedPermanently {
			t.Errorf("GET %s: got status %d", path, rr.Code)
		}
	}
}

func TestSiteHandler_PathTraversal(t *testing.T) {
	chdirToSiteFixture(t)
	webUI := &WebUI{}

	tests := []struct {
		name         string
		path         string
		wantStatuses []int
	}{
		{
			name:         "traversal to system files",
			path:         "/site/../../../etc/passwd",
			wantStatuses: []int{http.StatusNotFound},
		},
		{
			name:         "sibling directory bypass",
			path:         "/site/../site-secret/secret.html",
			wantStatuses: []int{http.StatusNotFound},
		},
		{
			name:         "percent-encoded traversal",
			path:         "/site/%2e%2e/site-secret/secret.html",
			wantStatuses: []int{http.StatusNotFound},
		},
		{
			name:         "backslash traversal",
			path:         "/site/..\\site-secret\\secret.html",
			wantStatuses: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			name:         "disallowed extension",
			path:         "/site/config.json",
			wantStatuses: []int{http.StatusNotFound},
		},
		{
			name:         "null byte injection",
			path:         "/site/index.html%00.png",
			wantStatuses: []int{http.StatusNotFound, http.StatusInternalServerError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			webUI.siteHandler(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			for _, want := range tt.wantStatuses {
				if rr.Code == want {
					return
				}
			}
			t.Errorf("GET %s: got status %d, want one of %v, body %q",
				tt.path, rr.Code, tt.wantStatuses, rr.Body.String())
		})
	}
}
