// Package history keeps the ordered, clearable log of successful calculations.
package history

import (
	"context"
	"strconv"
	"sync"
)

// Entry is one successful calculation.
type Entry struct {
	Operand1  float64 `json:"operand1"`
	Operation string  `json:"operation"`
	Operator  string  `json:"operator"`
	Operand2  float64 `json:"operand2"`
	Result    float64 `json:"result"`
}

// String renders the entry in compact expression form, e.g. "5+3=8".
func (e Entry) String() string {
	return formatNumber(e.Operand1) + e.Operator + formatNumber(e.Operand2) + "=" + formatNumber(e.Result)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Store is an append-only log of entries. Implementations must preserve
// append order and be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, e Entry) error
	All(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}

// MemoryStore is the process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	return nil
}

// All returns a copy of the entries in append order.
func (s *MemoryStore) All(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
