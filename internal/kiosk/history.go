package kiosk

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dispenagua/kiosk/internal/vending"
)

// AttemptStatus is the state of a payment attempt
type AttemptStatus string

const (
	AttemptPending    AttemptStatus = "pending"
	AttemptReady      AttemptStatus = "ready"
	AttemptFailed     AttemptStatus = "failed"
	AttemptSuperseded AttemptStatus = "superseded"
)

// Attempt records one payment code request
type Attempt struct {
	ID          string            `json:"id"`
	ProductID   vending.ProductID `json:"product_id"`
	ProductName string            `json:"product_name"`
	Status      AttemptStatus     `json:"status"`
	Payload     string            `json:"payload,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// History is a thread-safe ring buffer of payment attempts
type History struct {
	mu      sync.RWMutex
	entries []Attempt
	cap     int
}

// NewHistory creates a history with the given capacity
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		entries: make([]Attempt, 0, capacity),
		cap:     capacity,
	}
}

// Start records a pending attempt for p and returns its id
func (h *History) Start(p vending.Product) string {
	a := Attempt{
		ID:          uuid.NewString(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Status:      AttemptPending,
		CreatedAt:   time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) >= h.cap {
		copy(h.entries, h.entries[1:])
		h.entries[len(h.entries)-1] = a
	} else {
		h.entries = append(h.entries, a)
	}
	return a.ID
}

// Complete sets the final status of an attempt. Unknown ids (already rotated
// out) are ignored.
func (h *History) Complete(id string, status AttemptStatus, payload, errMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].ID != id {
			continue
		}
		now := time.Now()
		h.entries[i].Status = status
		h.entries[i].Payload = payload
		h.entries[i].Error = errMsg
		h.entries[i].CompletedAt = &now
		return
	}
}

// Entries returns all attempts, newest first
func (h *History) Entries() []Attempt {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Attempt, len(h.entries))
	for i, j := 0, len(h.entries)-1; j >= 0; i, j = i+1, j-1 {
		result[i] = h.entries[j]
	}
	return result
}
