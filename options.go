package heron

import (
	"database/sql"

	"github.com/denismitr/heron/internal/logger"
	"github.com/denismitr/heron/internal/source"
	"github.com/denismitr/heron/ledger"
	"github.com/denismitr/heron/migration"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	r "gopkg.in/rethinkdb/rethinkdb-go.v6"
)

type OptionFunc func(*Migrator) error

// UseMigrations supplies the universe of migration units from
// factories. Discovery runs eagerly, so a bad factory fails migrator
// construction.
func UseMigrations(factories ...migration.Factory) OptionFunc {
	return func(m *Migrator) error {
		s, err := source.NewInMemorySource(factories...)
		if err != nil {
			return err
		}

		m.sel = s
		return nil
	}
}

// UseRegistry supplies the universe from a migration registry, usually
// the default one populated by a code bundle's init functions.
func UseRegistry(reg *migration.Registry) OptionFunc {
	return func(m *Migrator) error {
		return UseMigrations(reg.Factories()...)(m)
	}
}

// UseLedger plugs in a custom ledger implementation.
func UseLedger(l ledger.Ledger) OptionFunc {
	return func(m *Migrator) error {
		m.ldg = l
		return nil
	}
}

// UseMongoDB keeps the ledger in a MongoDB collection.
func UseMongoDB(db *mongo.Database, collection string) OptionFunc {
	return func(m *Migrator) error {
		m.ldg = ledger.NewMongoLedger(db, collection, nil)
		return nil
	}
}

// UseRethinkDB keeps the ledger in a RethinkDB table.
func UseRethinkDB(session r.QueryExecutor, dbname, table string) OptionFunc {
	return func(m *Migrator) error {
		m.ldg = ledger.NewRethinkLedger(session, dbname, table, nil)
		return nil
	}
}

// UseMySQL keeps the ledger in a MySQL table.
func UseMySQL(db *sql.DB, table string) OptionFunc {
	return func(m *Migrator) error {
		m.ldg = ledger.NewMySQLLedger(sqlx.NewDb(db, "mysql"), table, nil)
		return nil
	}
}

// UseSqlite keeps the ledger in a sqlite table.
func UseSqlite(db *sql.DB, table string) OptionFunc {
	return func(m *Migrator) error {
		m.ldg = ledger.NewSqliteLedger(sqlx.NewDb(db, "sqlite3"), table, nil)
		return nil
	}
}

// UseInMemoryLedger keeps the ledger in memory, for tests and dry runs.
func UseInMemoryLedger() OptionFunc {
	return func(m *Migrator) error {
		m.ldg = ledger.NewInMemoryLedger(nil)
		return nil
	}
}

func UseColorLogger(p logger.Printer, printOps, printDebug bool) OptionFunc {
	return func(m *Migrator) error {
		m.lg = logger.NewColorLogger(p, printOps, printDebug)
		return nil
	}
}

func UseBWLogger(p logger.Printer, printOps, printDebug bool) OptionFunc {
	return func(m *Migrator) error {
		m.lg = logger.NewBWLogger(p, printOps, printDebug)
		return nil
	}
}
