package api

import (
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// LogBuffer is a thread-safe ring buffer for log entries. It is installed as a
// logrus hook and backs the developer console.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	cap     int
}

// NewLogBuffer creates a new log buffer with the given capacity
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &LogBuffer{
		entries: make([]LogEntry, 0, capacity),
		cap:     capacity,
	}
}

// Add adds a log entry to the buffer
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.entries) >= lb.cap {
		// Shift everything left by 1, drop oldest
		copy(lb.entries, lb.entries[1:])
		lb.entries[len(lb.entries)-1] = entry
	} else {
		lb.entries = append(lb.entries, entry)
	}
}

// Entries returns all entries, optionally filtered by level
func (lb *LogBuffer) Entries(levels []string) []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	if len(levels) == 0 {
		result := make([]LogEntry, len(lb.entries))
		copy(result, lb.entries)
		return result
	}

	levelSet := make(map[string]bool)
	for _, l := range levels {
		levelSet[levelName(strings.ToLower(strings.TrimSpace(l)))] = true
	}

	result := make([]LogEntry, 0)
	for _, e := range lb.entries {
		if levelSet[e.Level] {
			result = append(result, e)
		}
	}
	return result
}

// Clear removes all entries
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.entries = lb.entries[:0]
}

// Levels implements log.Hook
func (lb *LogBuffer) Levels() []log.Level {
	return []log.Level{
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
		log.DebugLevel,
	}
}

// Fire implements log.Hook
func (lb *LogBuffer) Fire(e *log.Entry) error {
	entry := LogEntry{
		Timestamp: e.Time,
		Level:     levelName(e.Level.String()),
		Message:   e.Message,
	}
	if len(e.Data) > 0 {
		entry.Fields = make(map[string]string, len(e.Data))
		for k, v := range e.Data {
			entry.Fields[k] = fmt.Sprint(v)
		}
	}
	lb.Add(entry)
	return nil
}

// levelName shortens logrus' "warning" to the console's "warn"
func levelName(level string) string {
	if level == "warning" {
		return "warn"
	}
	return level
}
