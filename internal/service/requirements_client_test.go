package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries int) *RequirementsClient {
	c := NewRequirementsClient(url, "tok", retries, zerolog.Nop())
	c.baseBackoff = time.Millisecond
	return c
}

func TestRequirementsClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/negotiations/neg%201/requirements", r.URL.EscapedPath())
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"numberOfBidders": "3"}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL, 3).Fetch(context.Background(), "neg 1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"numberOfBidders": "3"}, raw)
}

func TestRequirementsClient_DoubleEncodedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"{\"number_of_bidders\": \"2\"}"`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL, 1).Fetch(context.Background(), "neg-1")
	require.NoError(t, err)
	assert.Equal(t, "2", raw["number_of_bidders"])
}

func TestRequirementsClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL, 3).Fetch(context.Background(), "neg-1")
	require.NoError(t, err)
	assert.Equal(t, true, raw["ok"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRequirementsClient_GivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Fetch(context.Background(), "neg-1")
	assert.ErrorContains(t, err, "max retries exceeded")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRequirementsClient_NoRetryOnClientErrors(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusNotFound, ErrRequirementsNotFound},
		{http.StatusForbidden, nil},
	}
	for _, tt := range tests {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(tt.status)
		}))

		_, err := newTestClient(srv.URL, 3).Fetch(context.Background(), "neg-1")
		require.Error(t, err)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		srv.Close()
	}
}

func TestRequirementsClient_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(srv.URL, 5).Fetch(ctx, "neg-1")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRequirementsClient_NonObjectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).Fetch(context.Background(), "neg-1")
	assert.Error(t, err)
}
