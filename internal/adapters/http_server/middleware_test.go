package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/adapters/observability"
)

func TestInstrument_LogsRoutePatternAndLevel(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(Instrument(zerolog.New(&buf)))
	r.Get("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	before := testutil.ToFloat64(observability.HTTPRequests.WithLabelValues("/things/{id}", "GET", "418"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	r.ServeHTTP(rec, req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/things/{id}", line["route"])
	assert.EqualValues(t, 418, line["status"])
	assert.EqualValues(t, len("short and stout"), line["bytes"])
	assert.Equal(t, "10.1.2.3", line["remote"])

	after := testutil.ToFloat64(observability.HTTPRequests.WithLabelValues("/things/{id}", "GET", "418"))
	assert.Equal(t, before+1, after)
}

func TestInstrument_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := Instrument(zerolog.New(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "/plain", line["route"])
	assert.EqualValues(t, 200, line["status"])
}

func TestServer_FallbacksAndHealth(t *testing.T) {
	srv := New()
	srv.mux.Get("/only-get", func(w http.ResponseWriter, _ *http.Request) {})

	cases := []struct {
		method, path string
		status       int
		body         string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, `"status":"ok"`},
		{http.MethodGet, "/missing", http.StatusNotFound, `"error":"Route /missing not found"`},
		{http.MethodPost, "/only-get", http.StatusMethodNotAllowed, `"error":"Method POST not allowed"`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		srv.Mux().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), tc.body, tc.path)
	}
}

func TestTimeout_WritesEnvelope(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, timeoutBody, rec.Body.String())
}
