// Package store persists bill history as an append-only log with a
// latest-record-per-period read projection.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/calibration"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// Supported drivers for Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Entry is one write to the history log.
type Entry struct {
	ID        string           `json:"id"`
	Period    string           `json:"period"`
	Record    model.BillRecord `json:"record"`
	WrittenAt time.Time        `json:"written_at"`
}

// History is a bill history backend.
type History interface {
	calibration.HistoryStore
	// Entries returns every write in write order, including overwritten ones.
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}

var (
	_ History = (*Memory)(nil)
	_ History = (*SQLite)(nil)
)

// Open returns the backend named by driver. path is ignored for memory.
func Open(ctx context.Context, driver, path string) (History, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverSQLite:
		s, err := NewSQLite(path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown history driver %q", driver)
	}
}
