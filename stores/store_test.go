package stores_test

import (
	"testing"

	"github.com/martory/go-tenant-session/stores"
	"github.com/stretchr/testify/require"
)

var directory = []stores.Store{
	{ID: 1, Subdomain: "acme", StoreName: "Acme Traders"},
	{ID: 2, Subdomain: "beta", StoreName: ""},
	{ID: 30, Subdomain: "7eleven", StoreName: "Seven"},
}

func TestMinimal(t *testing.T) {
	s := stores.Minimal(7, "acme")
	require.Equal(t, int64(7), s.ID)
	require.Equal(t, "acme", s.Subdomain)
	require.Equal(t, "acme", s.StoreName)
	require.Nil(t, s.City)
	require.Nil(t, s.Status)
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Acme Traders", directory[0].DisplayName())
	require.Equal(t, "beta", directory[1].DisplayName())
}

func TestSame(t *testing.T) {
	require.True(t, stores.Store{ID: 1}.Same(stores.Store{ID: 1, Subdomain: "other"}))
	require.False(t, stores.Store{ID: 1, Subdomain: "a"}.Same(stores.Store{ID: 2, Subdomain: "a"}))
	require.True(t, stores.Store{Subdomain: "ACME"}.Same(stores.Store{ID: 4, Subdomain: "acme"}))
	require.False(t, stores.Store{}.Same(stores.Store{}))
}

func TestLookup(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		s, ok := stores.Lookup(directory, "2")
		require.True(t, ok)
		require.Equal(t, "beta", s.Subdomain)
	})

	t.Run("by subdomain", func(t *testing.T) {
		s, ok := stores.Lookup(directory, " Acme ")
		require.True(t, ok)
		require.Equal(t, int64(1), s.ID)
	})

	t.Run("numeric-looking subdomain", func(t *testing.T) {
		s, ok := stores.Lookup(directory, "7eleven")
		require.True(t, ok)
		require.Equal(t, int64(30), s.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, ok := stores.Lookup(directory, "nope")
		require.False(t, ok)
	})
}

func TestContains(t *testing.T) {
	require.True(t, stores.Contains(directory, stores.Store{ID: 30}))
	require.False(t, stores.Contains(directory, stores.Store{ID: 99, Subdomain: "ghost"}))
	require.False(t, stores.Contains(nil, stores.Store{ID: 1}))
}
