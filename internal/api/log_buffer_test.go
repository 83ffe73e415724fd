package api

import (
	"testing"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBuffer_Hook(t *testing.T) {
	logger, _ := test.NewNullLogger()
	buf := NewLogBuffer(10)
	logger.AddHook(buf)

	logger.Info("started")
	logger.WithError(errors.New("boom")).WithField("call", "list_products").Warn("backend down")
	logger.Error("failed")

	all := buf.Entries(nil)
	require.Len(t, all, 3)
	assert.Equal(t, "info", all[0].Level)
	assert.Equal(t, "warn", all[1].Level)
	assert.Equal(t, "boom", all[1].Fields[log.ErrorKey])
	assert.Equal(t, "list_products", all[1].Fields["call"])

	warnings := buf.Entries([]string{"WARNING"})
	require.Len(t, warnings, 1)
	assert.Equal(t, "backend down", warnings[0].Message)

	assert.Len(t, buf.Entries([]string{"error", "warn"}), 2)
}

func TestLogBuffer_Capacity(t *testing.T) {
	buf := NewLogBuffer(2)
	buf.Add(LogEntry{Message: "a"})
	buf.Add(LogEntry{Message: "b"})
	buf.Add(LogEntry{Message: "c"})

	entries := buf.Entries(nil)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Message)
	assert.Equal(t, "c", entries[1].Message)

	buf.Clear()
	assert.Empty(t, buf.Entries(nil))
}
