package source

import (
	"context"

	"github.com/denismitr/heron/migration"
)

// InMemorySource holds the fixed universe of migration units. The
// universe is built once from factories and never mutated afterwards.
type InMemorySource struct {
	migrations migration.Migrations
}

var _ Selector = (*InMemorySource)(nil)

func NewInMemorySource(factories ...migration.Factory) (*InMemorySource, error) {
	m, err := migration.NewMigrations(factories...)
	if err != nil {
		return nil, err
	}

	return &InMemorySource{
		migrations: m,
	}, nil
}

func (s *InMemorySource) Select(ctx context.Context, rg Range) (migration.Migrations, error) {
	if s.migrations == nil {
		return nil, ErrNoMigrations
	}

	// migrations are sorted by NewMigrations, so the result keeps
	// ascending version order
	var result migration.Migrations
	for i := range s.migrations {
		if rg.Contains(s.migrations[i].Version) {
			result = append(result, s.migrations[i])
		}
	}

	return result, nil
}
