package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/denismitr/heron/migration"
)

// InMemoryLedger keeps entries in a map. It backs tests and dry runs
// where no database should be touched.
type InMemoryLedger struct {
	clock   ClockFunc
	entries map[migration.Version]Entry
}

var _ Ledger = (*InMemoryLedger)(nil)

func NewInMemoryLedger(clock ClockFunc) *InMemoryLedger {
	if clock == nil {
		clock = time.Now
	}

	return &InMemoryLedger{
		clock:   clock,
		entries: make(map[migration.Version]Entry),
	}
}

func (l *InMemoryLedger) Applied(ctx context.Context) ([]migration.Version, error) {
	var versions []migration.Version
	for v := range l.entries {
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i] < versions[j]
	})

	return versions, nil
}

func (l *InMemoryLedger) RecordApplied(ctx context.Context, v migration.Version) error {
	l.entries[v] = Entry{Version: v, AppliedAt: l.clock()}
	return nil
}

func (l *InMemoryLedger) RecordReverted(ctx context.Context, v migration.Version) error {
	delete(l.entries, v)
	return nil
}

func (l *InMemoryLedger) Entries() []Entry {
	var result []Entry
	for _, e := range l.entries {
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result
}
