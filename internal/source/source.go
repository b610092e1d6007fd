package source

import (
	"context"

	"github.com/denismitr/heron/migration"
	"github.com/pkg/errors"
)

var ErrNoMigrations = errors.New("no migrations")

// Range is an inclusive version range. The sentinel versions make it
// unbounded on either side.
type Range struct {
	From migration.Version
	To   migration.Version
}

func (r Range) Contains(v migration.Version) bool {
	return v >= r.From && v <= r.To
}

type Selector interface {
	Select(ctx context.Context, r Range) (migration.Migrations, error)
}
