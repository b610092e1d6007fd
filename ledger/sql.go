package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/denismitr/heron/migration"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// SQLLedger keeps the applied set in a relational table for
// deployments that track migration state in a SQL sidecar, or in a
// local sqlite file during development.
type SQLLedger struct {
	db      *sqlx.DB
	table   string
	dialect sqlDialect
	clock   ClockFunc
}

var _ Ledger = (*SQLLedger)(nil)

type sqlDialect interface {
	initQuery(table string) string
	insertQuery(table string) string
	removeQuery(table string) string
	readQuery(table string) string
}

type mysqlDialect struct{}

func (mysqlDialect) initQuery(table string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (version BIGINT PRIMARY KEY, applied_at TIMESTAMP NOT NULL) ENGINE=INNODB",
		table,
	)
}

func (mysqlDialect) insertQuery(table string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (version, applied_at) VALUES (?, ?) ON DUPLICATE KEY UPDATE applied_at = VALUES(applied_at)",
		table,
	)
}

func (mysqlDialect) removeQuery(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE version = ?", table)
}

func (mysqlDialect) readQuery(table string) string {
	return fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version ASC", table)
}

type sqliteDialect struct{}

func (sqliteDialect) initQuery(table string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (version INTEGER PRIMARY KEY, applied_at TIMESTAMP NOT NULL)",
		table,
	)
}

func (sqliteDialect) insertQuery(table string) string {
	return fmt.Sprintf("INSERT OR REPLACE INTO %s (version, applied_at) VALUES (?, ?)", table)
}

func (sqliteDialect) removeQuery(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE version = ?", table)
}

func (sqliteDialect) readQuery(table string) string {
	return fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version ASC", table)
}

func NewMySQLLedger(db *sqlx.DB, table string, clock ClockFunc) *SQLLedger {
	return newSQLLedger(db, table, mysqlDialect{}, clock)
}

func NewSqliteLedger(db *sqlx.DB, table string, clock ClockFunc) *SQLLedger {
	return newSQLLedger(db, table, sqliteDialect{}, clock)
}

func newSQLLedger(db *sqlx.DB, table string, dialect sqlDialect, clock ClockFunc) *SQLLedger {
	if table == "" {
		table = DefaultCollection
	}

	if clock == nil {
		clock = time.Now
	}

	return &SQLLedger{
		db:      db,
		table:   table,
		dialect: dialect,
		clock:   clock,
	}
}

// Init creates the ledger table when it does not exist yet.
func (l *SQLLedger) Init(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, l.dialect.initQuery(l.table)); err != nil {
		return errors.Wrapf(err, "could not create ledger table %s", l.table)
	}

	return nil
}

func (l *SQLLedger) Applied(ctx context.Context) ([]migration.Version, error) {
	var entries []Entry
	if err := l.db.SelectContext(ctx, &entries, l.dialect.readQuery(l.table)); err != nil {
		return nil, errors.Wrap(err, "could not read applied versions")
	}

	var versions []migration.Version
	for i := range entries {
		versions = append(versions, entries[i].Version)
	}

	return versions, nil
}

func (l *SQLLedger) RecordApplied(ctx context.Context, v migration.Version) error {
	_, err := l.db.ExecContext(ctx, l.dialect.insertQuery(l.table), int64(v), l.clock().UTC())
	if err != nil {
		return errors.Wrapf(ErrPersistenceFailed, "version %d: %s", int64(v), err.Error())
	}

	return nil
}

func (l *SQLLedger) RecordReverted(ctx context.Context, v migration.Version) error {
	_, err := l.db.ExecContext(ctx, l.dialect.removeQuery(l.table), int64(v))
	if err != nil {
		return errors.Wrapf(ErrPersistenceFailed, "version %d: %s", int64(v), err.Error())
	}

	return nil
}
