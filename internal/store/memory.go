package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// Memory holds the history log in memory.
type Memory struct {
	mu     sync.RWMutex
	log    []Entry
	latest map[string]int // period key -> index into log
	keys   []string       // sorted period keys
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		latest: make(map[string]int),
		now:    time.Now,
	}
}

// RecordMonth appends rec and makes it the active record for its period.
func (m *Memory) RecordMonth(ctx context.Context, year int, month time.Month, rec model.BillRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.Year, rec.Month = year, month
	key := model.PeriodKey(year, month)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.log = append(m.log, Entry{
		ID:        uuid.NewString(),
		Period:    key,
		Record:    rec,
		WrittenAt: m.now().UTC(),
	})
	if _, ok := m.latest[key]; !ok {
		i := sort.SearchStrings(m.keys, key)
		m.keys = append(m.keys, "")
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = key
	}
	m.latest[key] = len(m.log) - 1
	return nil
}

// LoadHistory returns the active record of every period, oldest first.
func (m *Memory) LoadHistory(ctx context.Context) ([]model.BillRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.BillRecord, len(m.keys))
	for i, key := range m.keys {
		out[i] = m.log[m.latest[key]].Record
	}
	return out, nil
}

// Find returns the active record for a period.
func (m *Memory) Find(ctx context.Context, year int, month time.Month) (model.BillRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.BillRecord{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.latest[model.PeriodKey(year, month)]
	if !ok {
		return model.BillRecord{}, false, nil
	}
	return m.log[idx].Record, true, nil
}

// Entries returns a copy of the full log.
func (m *Memory) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, len(m.log))
	copy(out, m.log)
	return out, nil
}

func (m *Memory) Close() error { return nil }
