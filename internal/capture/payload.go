package capture

import (
	"maps"
	"time"
)

// Payload is the record of one accepted ingestion request. Records are never
// modified after they are appended to a Store.
type Payload struct {
	ID         string            `json:"id"`
	ReceivedAt time.Time         `json:"receivedAt"`
	Vendor     string            `json:"vendor"`
	Kind       string            `json:"kind,omitempty"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Params     map[string]string `json:"params,omitempty"`
	SizeBytes  int               `json:"sizeBytes"`
	ItemCount  *int              `json:"itemCount,omitempty"`
}

// ServiceKey is the byService grouping key: the vendor, suffixed with "-kind"
// when a kind is present.
func (p Payload) ServiceKey() string {
	if p.Kind == "" {
		return p.Vendor
	}
	return p.Vendor + "-" + p.Kind
}

// clone returns p with its own copies of the referenced params and count.
func (p Payload) clone() Payload {
	if p.ItemCount != nil {
		n := *p.ItemCount
		p.ItemCount = &n
	}
	p.Params = maps.Clone(p.Params)
	return p
}

// Stats is a consistent snapshot of a Store.
type Stats struct {
	TotalReceived int            `json:"totalReceived"`
	ByService     map[string]int `json:"byService"`
	Recent        []Payload      `json:"recent"`
	Supported     []string       `json:"supported"`
}

// Health reports liveness and process uptime.
type Health struct {
	Status        string  `json:"status"`
	Uptime        float64 `json:"uptime"` // seconds
	TotalPayloads int     `json:"totalPayloads"`
}
