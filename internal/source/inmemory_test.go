package source

import (
	"context"
	"testing"

	"github.com/denismitr/heron/migration"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InMemorySource(t *testing.T) {
	ctx := context.Background()

	newSource := func(t *testing.T) *InMemorySource {
		s, err := NewInMemorySource(
			migration.New(30, "baz", nil, nil),
			migration.New(10, "foo", nil, nil),
			migration.New(20, "bar", nil, nil),
		)
		require.NoError(t, err)
		return s
	}

	t.Run("it will return the full universe for an unbounded range", func(t *testing.T) {
		s := newSource(t)

		result, err := s.Select(ctx, Range{From: migration.MinVersion, To: migration.MaxVersion})
		require.NoError(t, err)
		assert.Equal(t, []migration.Version{10, 20, 30}, result.Versions())
	})

	t.Run("it will include both bounds", func(t *testing.T) {
		s := newSource(t)

		result, err := s.Select(ctx, Range{From: 10, To: 20})
		require.NoError(t, err)
		assert.Equal(t, []migration.Version{10, 20}, result.Versions())
	})

	t.Run("it will return exactly one unit for a single point range", func(t *testing.T) {
		s := newSource(t)

		result, err := s.Select(ctx, Range{From: 20, To: 20})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, migration.Version(20), result[0].Version)
	})

	t.Run("it will return nothing for a range between versions", func(t *testing.T) {
		s := newSource(t)

		result, err := s.Select(ctx, Range{From: 11, To: 19})
		require.NoError(t, err)
		assert.Len(t, result, 0)
	})

	t.Run("it will tolerate an empty universe", func(t *testing.T) {
		s, err := NewInMemorySource()
		require.NoError(t, err)

		result, err := s.Select(ctx, Range{From: migration.MinVersion, To: migration.MaxVersion})
		require.NoError(t, err)
		assert.Len(t, result, 0)
	})

	t.Run("it will fail fast on a broken factory", func(t *testing.T) {
		broken := migration.Factory(func() (*migration.Migration, error) {
			return nil, errors.New("cannot instantiate")
		})

		_, err := NewInMemorySource(broken)
		assert.True(t, errors.Is(err, migration.ErrDiscoveryFailed))
	})
}

func Test_RangeContains(t *testing.T) {
	rg := Range{From: 10, To: 20}

	assert.True(t, rg.Contains(10))
	assert.True(t, rg.Contains(15))
	assert.True(t, rg.Contains(20))
	assert.False(t, rg.Contains(9))
	assert.False(t, rg.Contains(21))
}
