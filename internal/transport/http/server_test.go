package http

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_RunShutdown(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), 2*time.Second)
	assert.Equal(t, time.Second, srv.httpServer.ReadHeaderTimeout)
	assert.Equal(t, 8*time.Second, srv.httpServer.IdleTimeout)

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	// даём ListenAndServe стартовать; Shutdown корректен и до старта
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, http.ErrServerClosed))
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
