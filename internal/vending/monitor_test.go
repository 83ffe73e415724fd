package vending

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMonitor_Probe(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"status": "ok", "mp_mode": "test"}`)
	}))
	defer srv.Close()

	var changes []bool
	m := NewMonitor(NewClient(srv.URL, nil), 0, log.NewEntry(log.New()))
	m.OnChange = func(s ConnectionStatus) { changes = append(changes, s.Connected) }

	m.Probe(context.Background())
	status := m.Status()
	assert.True(t, status.Connected)
	assert.Empty(t, status.LastError)
	assert.False(t, status.LastSeen.IsZero())
	assert.Equal(t, srv.URL, status.BaseURL)

	m.Probe(context.Background())

	healthy.Store(false)
	m.Probe(context.Background())
	status = m.Status()
	assert.False(t, status.Connected)
	assert.Contains(t, status.LastError, "503")

	assert.Equal(t, []bool{true, false}, changes, "only flips are reported")
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "ok"}`)
	}))
	defer srv.Close()

	m := NewMonitor(NewClient(srv.URL, nil), 0, log.NewEntry(log.New()))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
