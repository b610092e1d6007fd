package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/denismitr/heron/migration"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSqlite(t *testing.T) *sqlx.DB {
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func Test_SqliteLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("it will create the ledger table on init", func(t *testing.T) {
		db := openSqlite(t)
		l := NewSqliteLedger(db, "", nil)

		require.NoError(t, l.Init(ctx))

		applied, err := l.Applied(ctx)
		require.NoError(t, err)
		assert.Len(t, applied, 0)
	})

	t.Run("it will record and read back applied versions sorted", func(t *testing.T) {
		db := openSqlite(t)
		l := NewSqliteLedger(db, "migration_ledger", nil)
		require.NoError(t, l.Init(ctx))

		require.NoError(t, l.RecordApplied(ctx, 30))
		require.NoError(t, l.RecordApplied(ctx, 10))
		require.NoError(t, l.RecordApplied(ctx, 20))

		applied, err := l.Applied(ctx)
		require.NoError(t, err)
		assert.Equal(t, []migration.Version{10, 20, 30}, applied)
	})

	t.Run("it will remove a reverted version", func(t *testing.T) {
		db := openSqlite(t)
		l := NewSqliteLedger(db, "", nil)
		require.NoError(t, l.Init(ctx))

		require.NoError(t, l.RecordApplied(ctx, 10))
		require.NoError(t, l.RecordApplied(ctx, 20))
		require.NoError(t, l.RecordReverted(ctx, 10))

		applied, err := l.Applied(ctx)
		require.NoError(t, err)
		assert.Equal(t, []migration.Version{20}, applied)
	})

	t.Run("it will tolerate a replayed record after a lost ledger write", func(t *testing.T) {
		now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
		db := openSqlite(t)
		l := NewSqliteLedger(db, "", func() time.Time { return now })
		require.NoError(t, l.Init(ctx))

		require.NoError(t, l.RecordApplied(ctx, 10))
		require.NoError(t, l.RecordApplied(ctx, 10))

		applied, err := l.Applied(ctx)
		require.NoError(t, err)
		assert.Equal(t, []migration.Version{10}, applied)
	})

	t.Run("it will report a persistence failure when the table is gone", func(t *testing.T) {
		db := openSqlite(t)
		l := NewSqliteLedger(db, "", nil)

		// no Init, the table does not exist
		err := l.RecordApplied(ctx, 10)
		assert.True(t, errors.Is(err, ErrPersistenceFailed))
	})
}

func Test_SQLDialects(t *testing.T) {
	t.Run("it will name the configured table in every query", func(t *testing.T) {
		for _, d := range []sqlDialect{mysqlDialect{}, sqliteDialect{}} {
			assert.Contains(t, d.initQuery("ml"), "ml")
			assert.Contains(t, d.insertQuery("ml"), "ml")
			assert.Contains(t, d.removeQuery("ml"), "ml")
			assert.Contains(t, d.readQuery("ml"), "ml")
		}
	})
}
