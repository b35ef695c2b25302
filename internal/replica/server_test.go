package replica

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	m, _, session := newTestMerger(t)
	return NewServer("127.0.0.1:0", session, m, nil), session.User()
}

func TestServer_CommonHeaders(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://replica.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Date"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-control"))
	assert.Equal(t, "-1", rec.Header().Get("Expires"))
	assert.Equal(t, "https://replica.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestServer_Preflight(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "POST,GET,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "X-PINGOTHER,Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestServer_InvalidTokenIs401PlainText(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	body := `{"token":"intruder","table":"TB_Eintrag","mode":"read","data":{"TB_Eintrag":[]}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-type"), "text/plain")
	assert.NotEmpty(t, rec.Body.String())
}

func TestServer_MalformedRequestIs400(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"table":"TB_Eintrag"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_MergeRoundTrip(t *testing.T) {
	srv, token := newTestServer(t)
	h := srv.Handler()

	body := `{"token":"` + token + `","table":"TB_Eintrag","mode":"read_7d","data":{"TB_Eintrag":[` +
		`{"mandant_nr":1,"datum":"2024-06-01","eintrag":"unterwegs","created_at":"2024-06-01T18:00:00Z"}]}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-type"))
	assert.Contains(t, rec.Body.String(), `"insert":1`)
}

func TestServer_StopSetsFlag(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stop", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-srv.stop:
	default:
		t.Fatal("stop flag not set")
	}

	// A second hit must not panic on the closed channel.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stop", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
