package ledger

import (
	"context"
	"time"

	"github.com/denismitr/heron/migration"
	"github.com/pkg/errors"
	r "gopkg.in/rethinkdb/rethinkdb-go.v6"
)

// RethinkLedger stores one row per applied version, the version being
// the row id.
type RethinkLedger struct {
	session r.QueryExecutor
	table   r.Term
	dbname  string
	name    string
	clock   ClockFunc
}

var _ Ledger = (*RethinkLedger)(nil)

func NewRethinkLedger(session r.QueryExecutor, dbname, table string, clock ClockFunc) *RethinkLedger {
	if table == "" {
		table = DefaultCollection
	}

	if clock == nil {
		clock = time.Now
	}

	return &RethinkLedger{
		session: session,
		table:   r.DB(dbname).Table(table),
		dbname:  dbname,
		name:    table,
		clock:   clock,
	}
}

// Init creates the ledger table when it does not exist yet.
func (l *RethinkLedger) Init(ctx context.Context) error {
	err := r.DB(l.dbname).TableList().Contains(l.name).Do(func(exists r.Term) r.Term {
		return r.Branch(exists, nil, r.DB(l.dbname).TableCreate(l.name))
	}).Exec(l.session, r.ExecOpts{Context: ctx})
	if err != nil {
		return errors.Wrapf(err, "could not create ledger table %s", l.name)
	}

	return nil
}

func (l *RethinkLedger) Applied(ctx context.Context) ([]migration.Version, error) {
	results, err := l.table.OrderBy("id").Run(l.session, r.RunOpts{Context: ctx})
	if err != nil {
		return nil, errors.Wrap(err, "could not read applied versions")
	}

	defer func() {
		_ = results.Close()
	}()

	var entries []Entry
	if err := results.All(&entries); err != nil {
		return nil, errors.Wrap(err, "could not decode applied versions")
	}

	var versions []migration.Version
	for i := range entries {
		versions = append(versions, entries[i].Version)
	}

	return versions, nil
}

func (l *RethinkLedger) RecordApplied(ctx context.Context, v migration.Version) error {
	entry := Entry{Version: v, AppliedAt: l.clock().UTC()}

	_, err := l.table.Insert(entry, r.InsertOpts{
		Conflict: "replace",
	}).RunWrite(l.session, r.RunOpts{Context: ctx})
	if err != nil {
		return errors.Wrapf(ErrPersistenceFailed, "version %d: %s", int64(v), err.Error())
	}

	return nil
}

func (l *RethinkLedger) RecordReverted(ctx context.Context, v migration.Version) error {
	_, err := l.table.Get(v).Delete().RunWrite(l.session, r.RunOpts{Context: ctx})
	if err != nil {
		return errors.Wrapf(ErrPersistenceFailed, "version %d: %s", int64(v), err.Error())
	}

	return nil
}
