package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedTables(names ...string) []Table {
	tables := make([]Table, 0, len(names))
	for _, n := range names {
		tables = append(tables, Table{Name: n})
	}
	return tables
}

func TestValidate(t *testing.T) {
	tables := loadedTables("orders", "users", "events")

	t.Run("all names known", func(t *testing.T) {
		assert.NoError(t, Validate(tables, []string{"users", "orders"}, IntentInclude))
	})

	t.Run("empty candidate list", func(t *testing.T) {
		assert.NoError(t, Validate(tables, nil, IntentIgnore))
	})

	t.Run("first unknown name aborts", func(t *testing.T) {
		err := Validate(tables, []string{"orders", "missing", "also_missing"}, IntentTarget)
		require.Error(t, err)

		var unknown *UnknownTableError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "missing", unknown.Table)
		assert.Equal(t, IntentTarget, unknown.Intent)
	})

	t.Run("intent appears in message", func(t *testing.T) {
		err := Validate(tables, []string{"nope"}, IntentIgnore)
		require.Error(t, err)
		assert.Contains(t, err.Error(), IntentIgnore)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("unknown against empty set", func(t *testing.T) {
		err := Validate(nil, []string{"anything"}, IntentInclude)
		assert.Error(t, err)
	})
}

func TestFilter(t *testing.T) {
	tables := loadedTables("a", "b", "c", "d")

	t.Run("no lists is identity", func(t *testing.T) {
		assert.Equal(t, tables, Filter(tables, nil, nil))
	})

	t.Run("include intersects preserving order", func(t *testing.T) {
		got := Filter(tables, []string{"d", "b"}, nil)
		assert.Equal(t, []string{"b", "d"}, Names(got))
	})

	t.Run("ignore subtracts", func(t *testing.T) {
		got := Filter(tables, nil, []string{"a", "c"})
		assert.Equal(t, []string{"b", "d"}, Names(got))
	})

	t.Run("include then ignore", func(t *testing.T) {
		got := Filter(tables, []string{"a", "b", "c"}, []string{"b"})
		assert.Equal(t, []string{"a", "c"}, Names(got))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		_ = Filter(tables, []string{"a"}, nil)
		assert.Equal(t, []string{"a", "b", "c", "d"}, Names(tables))
	})
}

func TestNames(t *testing.T) {
	assert.Empty(t, Names(nil))
	assert.Equal(t, []string{"x", "y"}, Names(loadedTables("x", "y")))
}
