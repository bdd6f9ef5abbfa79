package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Storage receives a Log for every captured payload.
type Storage interface {
	Store(l Log) error
}

// StdoutStorage writes one JSON document per line.
type StdoutStorage struct {
	// Out defaults to os.Stdout.
	Out io.Writer

	mu sync.Mutex
}

// Store writes l as a single JSON line.
func (s *StdoutStorage) Store(l Log) error {
	b, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshalling capture log: %w", err)
	}

	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := out.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("writing capture log: %w", err)
	}
	return nil
}

// NopStorage discards everything.
type NopStorage struct{}

// Store drops l.
func (NopStorage) Store(Log) error { return nil }

// New returns the backend registered under storageType.
func New(storageType string) (Storage, error) {
	switch storageType {
	case "stdout":
		return &StdoutStorage{}, nil
	case "none", "":
		return NopStorage{}, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", storageType)
	}
}
