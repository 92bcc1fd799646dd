package observability_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/adapters/observability"
)

func TestMetricsHandler_ExposesServiceAndRuntimeMetrics(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveHTTP("/api/v1/hotels/{id}", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("mapquest", "geocode", 200, 30*time.Millisecond)
	observability.ObserveCache("redis", "hit")
	observability.ObservePhotoWrite("disk", 2048, nil)

	rr := httptest.NewRecorder()
	observability.MetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	out := rr.Body.String()
	for _, want := range []string{
		`hotelbook_http_requests_total{method="GET",route="/api/v1/hotels/{id}",status="200"}`,
		`hotelbook_external_requests_total{endpoint="geocode",service="mapquest",status="200"}`,
		`hotelbook_cache_events_total{cache="redis",event="hit"}`,
		`hotelbook_photo_writes_total{result="ok",store="disk"}`,
		"hotelbook_photo_size_bytes_bucket",
		"go_goroutines",
	} {
		assert.Contains(t, out, want)
	}
}

func TestObservePhotoWrite_Errors(t *testing.T) {
	before := testutil.ToFloat64(observability.PhotoWrites.WithLabelValues("cloudinary", "error"))
	observability.ObservePhotoWrite("cloudinary", 0, errors.New("boom"))
	after := testutil.ToFloat64(observability.PhotoWrites.WithLabelValues("cloudinary", "error"))
	assert.Equal(t, before+1, after)
}
