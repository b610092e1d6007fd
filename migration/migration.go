package migration

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

var ErrInvalidVersion = errors.New("invalid migration version")
var ErrDiscoveryFailed = errors.New("could not discover migrations")

type (
	// Version totally orders migrations. Real versions lie strictly
	// between MinVersion and MaxVersion.
	Version int64

	// TransformFunc performs the forward or backward transformation
	// against the database handle captured by the migration author.
	TransformFunc func(ctx context.Context) error

	// Migration is an immutable descriptor of a single versioned
	// transformation pair. The runner invokes Up or Down at most once
	// per run.
	Migration struct {
		Version Version
		Name    string
		Up      TransformFunc
		Down    TransformFunc
	}

	Factory func() (*Migration, error)
)

const (
	// MinVersion compares less than every real version.
	MinVersion Version = 0

	// MaxVersion compares greater than every real version.
	MaxVersion Version = math.MaxInt64
)

// New creates a migration factory. Version bounds are checked when the
// factory runs, so a bad version surfaces during discovery, before any
// transformation is executed.
func New(version Version, name string, up, down TransformFunc) Factory {
	return func() (*Migration, error) {
		if version <= MinVersion || version >= MaxVersion {
			return nil, errors.Wrapf(ErrInvalidVersion, "%d is out of bounds", int64(version))
		}

		return &Migration{
			Version: version,
			Name:    name,
			Up:      up,
			Down:    down,
		}, nil
	}
}

func VersionFromString(s string) (Version, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return MinVersion, errors.Wrapf(ErrInvalidVersion, "%s", s)
	}

	v := Version(n)
	if v <= MinVersion || v >= MaxVersion {
		return MinVersion, errors.Wrapf(ErrInvalidVersion, "%d is out of bounds", n)
	}

	return v, nil
}

type Migrations []*Migration

// NewMigrations runs every factory and returns the resulting units
// sorted by ascending version. A failing factory or a duplicate
// version aborts discovery.
func NewMigrations(factories ...Factory) (Migrations, error) {
	migrations := make(Migrations, len(factories))
	seen := make(map[Version]struct{}, len(factories))

	for i := range factories {
		m, err := factories[i]()
		if err != nil {
			return nil, errors.Wrap(ErrDiscoveryFailed, err.Error())
		}

		if _, ok := seen[m.Version]; ok {
			return nil, errors.Wrapf(ErrDiscoveryFailed, "duplicate version %d", int64(m.Version))
		}

		seen[m.Version] = struct{}{}
		migrations[i] = m
	}

	sort.Sort(migrations)

	return migrations, nil
}

func (m Migrations) Len() int {
	return len(m)
}

func (m Migrations) Less(i, j int) bool {
	return m[i].Version < m[j].Version
}

func (m Migrations) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

func (m Migrations) Versions() (result []Version) {
	for i := range m {
		result = append(result, m[i].Version)
	}
	return result
}

func InVersions(version Version, versions []Version) bool {
	for _, v := range versions {
		if v == version {
			return true
		}
	}

	return false
}
