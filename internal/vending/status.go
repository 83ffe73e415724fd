package vending

import "time"

// ConnectionStatus represents the backend connection status
type ConnectionStatus struct {
	Connected bool      `json:"connected"`
	LastError string    `json:"last_error,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
	BaseURL   string    `json:"base_url"`
}
