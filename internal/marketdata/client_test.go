package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentPrice_CachesWithinTTL(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/real-time/IONQ.US", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"IONQ.US","close":12.34,"timestamp":1756500000}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	price, err := client.CurrentPrice(context.Background(), "IONQ.US")
	require.NoError(t, err)
	assert.InDelta(t, 12.34, price, 1e-9)

	// second call is served from cache
	price, err = client.CurrentPrice(context.Background(), "IONQ.US")
	require.NoError(t, err)
	assert.InDelta(t, 12.34, price, 1e-9)
	assert.Equal(t, 1, hits)
}

func TestPriceHistory_ReturnsCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/MP.US", r.URL.Path)
		assert.Equal(t, "d", r.URL.Query().Get("period"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"date":"2026-08-25","close":55.1},{"date":"2026-08-26","close":56.2},{"date":"2026-08-27","close":54.8}]`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	closes, err := client.PriceHistory(context.Background(), "MP.US", 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{55.1, 56.2, 54.8}, closes)
}

func TestCurrentPrice_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))

	_, err := client.CurrentPrice(context.Background(), "IONQ.US")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
