package migration

import (
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_VersionOrdering(t *testing.T) {
	t.Run("it will keep the sentinels outside every real version", func(t *testing.T) {
		assert.True(t, MinVersion < 1)
		assert.True(t, MaxVersion > 1)
		assert.True(t, MinVersion < MaxVersion)
	})

	t.Run("it will sort migrations by ascending version", func(t *testing.T) {
		m1 := &Migration{Version: 1596897167, Name: "Foo migration"}
		m2 := &Migration{Version: 1586897167, Name: "Bar migration"}
		m3 := &Migration{Version: 1597897167, Name: "Baz migration"}
		m4 := &Migration{Version: 1577897167, Name: "FooBaz migration"}

		var migrations = Migrations{m1, m2, m3, m4}

		sort.Sort(migrations)

		assert.Equal(t, migrations[0].Name, m4.Name)
		assert.Equal(t, migrations[1].Name, m2.Name)
		assert.Equal(t, migrations[2].Name, m1.Name)
		assert.Equal(t, migrations[3].Name, m3.Name)
	})
}

func Test_VersionFromString(t *testing.T) {
	tt := []struct {
		name    string
		input   string
		version Version
		valid   bool
	}{
		{name: "plain integer", input: "42", version: 42, valid: true},
		{name: "timestamp style", input: "1596897167", version: 1596897167, valid: true},
		{name: "zero is the lower sentinel", input: "0", valid: false},
		{name: "negative", input: "-5", valid: false},
		{name: "not a number", input: "abc", valid: false},
		{name: "empty", input: "", valid: false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			v, err := VersionFromString(tc.input)
			if tc.valid {
				require.NoError(t, err)
				assert.Equal(t, tc.version, v)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidVersion))
			}
		})
	}
}

func Test_Discovery(t *testing.T) {
	t.Run("it will instantiate and sort the universe", func(t *testing.T) {
		migrations, err := NewMigrations(
			New(30, "baz", nil, nil),
			New(10, "foo", nil, nil),
			New(20, "bar", nil, nil),
		)

		require.NoError(t, err)
		require.Len(t, migrations, 3)
		assert.Equal(t, []Version{10, 20, 30}, migrations.Versions())
	})

	t.Run("it will fail on an out of bounds version", func(t *testing.T) {
		_, err := NewMigrations(New(MinVersion, "foo", nil, nil))
		assert.True(t, errors.Is(err, ErrDiscoveryFailed))

		_, err = NewMigrations(New(MaxVersion, "bar", nil, nil))
		assert.True(t, errors.Is(err, ErrDiscoveryFailed))
	})

	t.Run("it will fail on a duplicate version", func(t *testing.T) {
		_, err := NewMigrations(
			New(10, "foo", nil, nil),
			New(10, "bar", nil, nil),
		)

		assert.True(t, errors.Is(err, ErrDiscoveryFailed))
	})

	t.Run("it will propagate a failing factory", func(t *testing.T) {
		broken := Factory(func() (*Migration, error) {
			return nil, errors.New("cannot instantiate")
		})

		_, err := NewMigrations(New(10, "foo", nil, nil), broken)
		assert.True(t, errors.Is(err, ErrDiscoveryFailed))
	})
}

func Test_InVersions(t *testing.T) {
	versions := []Version{10, 20, 30}

	assert.True(t, InVersions(20, versions))
	assert.False(t, InVersions(25, versions))
	assert.False(t, InVersions(20, nil))
}

func Test_Registry(t *testing.T) {
	t.Run("it will hand out a copy of its factories", func(t *testing.T) {
		reg := NewRegistry()
		reg.Add(New(1, "foo", nil, nil))
		reg.Add(New(2, "bar", nil, nil), New(3, "baz", nil, nil))

		factories := reg.Factories()
		require.Len(t, factories, 3)

		factories[0] = nil
		assert.NotNil(t, reg.Factories()[0])
	})
}
