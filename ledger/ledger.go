package ledger

import (
	"context"
	"time"

	"github.com/denismitr/heron/migration"
	"github.com/pkg/errors"
)

// ErrPersistenceFailed marks a ledger write that could not be durably
// committed. The runner stops at the failing unit when it sees it.
var ErrPersistenceFailed = errors.New("could not persist migration ledger entry")

const DefaultCollection = "migrations"

// Entry is one persisted ledger record: a version that is currently
// applied to the database and when it was applied.
type Entry struct {
	Version   migration.Version `bson:"_id" db:"version" rethinkdb:"id"`
	AppliedAt time.Time         `bson:"applied_at" db:"applied_at" rethinkdb:"applied_at"`
}

type ClockFunc func() time.Time

// Ledger is the durable record of applied migration versions. Applied
// must reflect the latest persisted state on every call; the runner
// treats it as the single source of truth for idempotency.
type Ledger interface {
	Applied(ctx context.Context) ([]migration.Version, error)
	RecordApplied(ctx context.Context, v migration.Version) error
	RecordReverted(ctx context.Context, v migration.Version) error
}
