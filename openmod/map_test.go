package openmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	id, name string
}

func TestBiMap(t *testing.T) {
	m := NewBiMap(func(p pair) (string, string) {
		return p.id, p.name
	})

	m.Put(pair{id: "a1", name: "alpha"})
	m.Put(pair{id: "b1", name: "beta"})

	assert.Equal(t, 2, m.Len())

	got, ok := m.GetFirst("a1")
	require.True(t, ok)
	assert.Equal(t, "alpha", got.name)

	got, ok = m.GetSecond("beta")
	require.True(t, ok)
	assert.Equal(t, "b1", got.id)

	m.DeleteFirst("a1")

	_, ok = m.GetSecond("alpha")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())

	m.DeleteSecond("beta")
	assert.Zero(t, m.Len())
}

func TestSymmetricBiMap(t *testing.T) {
	m := NewSymmetricBiMap(func(p pair) (string, string) {
		return p.id, p.name
	})

	m.Put(pair{id: "a1", name: "alpha"})

	for _, key := range []string{"a1", "alpha"} {
		got, ok := m.GetAny(key)
		require.True(t, ok, key)
		assert.Equal(t, "a1", got.id)
	}

	m.Delete("alpha")

	_, ok := m.GetAny("a1")
	assert.False(t, ok)
}
