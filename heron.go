package heron

import (
	"context"

	"github.com/denismitr/heron/internal/logger"
	"github.com/denismitr/heron/internal/source"
	"github.com/denismitr/heron/ledger"
	"github.com/denismitr/heron/migration"
	"github.com/pkg/errors"
)

var ErrLedgerNotInitialized = errors.New("migration ledger has not been initialized")
var ErrSourceNotInitialized = errors.New("migration source has not been initialized")

// ErrTransformationFailed marks a unit whose Up or Down raised a
// failure. Everything before it stays committed in the ledger; the
// failing unit's database-side effects are whatever partial work it
// performed.
var ErrTransformationFailed = errors.New("migration transformation failed")

type CloserFunc func() error

// Migrator reconciles the migration universe against the ledger and
// drives forward or backward execution in strict version order. It is
// a single-pass, synchronous runner and assumes it is the sole ledger
// writer for the duration of a run.
type Migrator struct {
	lg  logger.Logger
	ldg ledger.Ledger
	sel source.Selector
}

// NewMigrator creates a migrator from option callbacks. A ledger and a
// migration source are mandatory.
func NewMigrator(opts ...OptionFunc) (*Migrator, error) {
	m := new(Migrator)
	m.lg = &logger.NullLogger{}

	for _, oFunc := range opts {
		if err := oFunc(m); err != nil {
			return nil, err
		}
	}

	if m.ldg == nil {
		return nil, ErrLedgerNotInitialized
	}

	if m.sel == nil {
		return nil, ErrSourceNotInitialized
	}

	return m, nil
}

// Up applies every not yet applied migration whose version does not
// exceed the target, ascending. It stops at the first failing unit:
// units before it remain recorded, the failing one and everything
// after it stay pending.
func (m *Migrator) Up(ctx context.Context, cfs ...ActionConfigurator) (migration.Migrations, error) {
	act := &action{target: migration.MaxVersion}
	for _, f := range cfs {
		f(act)
	}

	if err := m.initLedger(ctx); err != nil {
		m.lg.Error(err)
		return nil, err
	}

	applied, err := m.ldg.Applied(ctx)
	if err != nil {
		m.lg.Error(err)
		return nil, err
	}

	candidates, err := m.sel.Select(ctx, source.Range{From: migration.MinVersion, To: act.target})
	if err != nil {
		m.lg.Error(err)
		return nil, err
	}

	m.lg.Debugf(
		"discovered %d candidate migrations up to version %d, %d versions applied",
		len(candidates), int64(act.target), len(applied),
	)

	var migrated migration.Migrations
	for _, mg := range candidates {
		if migration.InVersions(mg.Version, applied) {
			continue
		}

		m.lg.Debugf("migrating version %d: %s", int64(mg.Version), mg.Name)

		if upErr := mg.Up(ctx); upErr != nil {
			wrapped := errors.Wrapf(
				ErrTransformationFailed,
				"up of version %d (%s): %s",
				int64(mg.Version), mg.Name, upErr.Error(),
			)
			m.lg.Error(wrapped)
			return migrated, wrapped
		}

		m.lg.Op("record applied", int64(mg.Version))
		if ldgErr := m.ldg.RecordApplied(ctx, mg.Version); ldgErr != nil {
			m.lg.Error(ldgErr)
			return migrated, ldgErr
		}

		m.lg.Successf("migrated version %d: %s", int64(mg.Version), mg.Name)
		migrated = append(migrated, mg)
	}

	return migrated, nil
}

// Down reverts every applied migration whose version is not below the
// target. Reversion runs in ascending version order to stay compatible
// with ledgers produced by earlier deployments of this engine, even
// though descending order would be safer for interdependent units.
func (m *Migrator) Down(ctx context.Context, cfs ...ActionConfigurator) (migration.Migrations, error) {
	act := &action{target: migration.MinVersion}
	for _, f := range cfs {
		f(act)
	}

	if err := m.initLedger(ctx); err != nil {
		m.lg.Error(err)
		return nil, err
	}

	applied, err := m.ldg.Applied(ctx)
	if err != nil {
		m.lg.Error(err)
		return nil, err
	}

	candidates, err := m.sel.Select(ctx, source.Range{From: act.target, To: migration.MaxVersion})
	if err != nil {
		m.lg.Error(err)
		return nil, err
	}

	m.lg.Debugf(
		"discovered %d candidate migrations down to version %d, %d versions applied",
		len(candidates), int64(act.target), len(applied),
	)

	var rolledBack migration.Migrations
	for _, mg := range candidates {
		if !migration.InVersions(mg.Version, applied) {
			continue
		}

		m.lg.Debugf("rolling back version %d: %s", int64(mg.Version), mg.Name)

		if downErr := mg.Down(ctx); downErr != nil {
			wrapped := errors.Wrapf(
				ErrTransformationFailed,
				"down of version %d (%s): %s",
				int64(mg.Version), mg.Name, downErr.Error(),
			)
			m.lg.Error(wrapped)
			return rolledBack, wrapped
		}

		m.lg.Op("record reverted", int64(mg.Version))
		if ldgErr := m.ldg.RecordReverted(ctx, mg.Version); ldgErr != nil {
			m.lg.Error(ldgErr)
			return rolledBack, ldgErr
		}

		m.lg.Successf("rolled back version %d: %s", int64(mg.Version), mg.Name)
		rolledBack = append(rolledBack, mg)
	}

	return rolledBack, nil
}

// Pending returns the units Up would apply, without applying them.
func (m *Migrator) Pending(ctx context.Context) (migration.Migrations, error) {
	if err := m.initLedger(ctx); err != nil {
		return nil, err
	}

	applied, err := m.ldg.Applied(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := m.sel.Select(ctx, source.Range{From: migration.MinVersion, To: migration.MaxVersion})
	if err != nil {
		return nil, err
	}

	var pending migration.Migrations
	for _, mg := range candidates {
		if !migration.InVersions(mg.Version, applied) {
			pending = append(pending, mg)
		}
	}

	return pending, nil
}

// AppliedVersions reads the current applied set from the ledger.
func (m *Migrator) AppliedVersions(ctx context.Context) ([]migration.Version, error) {
	if err := m.initLedger(ctx); err != nil {
		return nil, err
	}

	return m.ldg.Applied(ctx)
}

type ledgerInitializer interface {
	Init(ctx context.Context) error
}

func (m *Migrator) initLedger(ctx context.Context) error {
	if ini, ok := m.ldg.(ledgerInitializer); ok {
		if err := ini.Init(ctx); err != nil {
			return err
		}
	}

	return nil
}
