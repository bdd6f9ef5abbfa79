package storage

import "time"

// Log defines the structure of records storing in Storage as log of captured payloads
type Log struct {
	ID         string              `json:"id"`
	ReceivedAt time.Time           `json:"received_at"`
	Vendor     string              `json:"vendor"`
	Kind       string              `json:"kind,omitempty"`
	Route      string              `json:"route"`             // Matched rule (METHOD:/pattern)
	URL        string              `json:"url"`               // Request path as received
	Headers    map[string][]string `json:"headers,omitempty"` // Request headers (if StoreHeaders is enabled)
	SizeBytes  int                 `json:"size_bytes"`
	ItemCount  *int                `json:"item_count,omitempty"`
	Fallback   bool                `json:"fallback,omitempty"` // No vendor rule matched
}
