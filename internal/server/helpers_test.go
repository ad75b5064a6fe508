package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "http://localhost:8080", want: "http://localhost:8080/health"},
		{in: "ws://localhost:8080/ws?room=main", want: "http://localhost:8080/health"},
		{in: "wss://poker.example.com", want: "https://poker.example.com/health"},
	}
	for _, tt := range tests {
		got, err := healthEndpoint(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestWaitForHealthyTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := WaitForHealthy(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
