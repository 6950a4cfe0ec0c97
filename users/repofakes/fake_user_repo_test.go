package userrepofakes_test

import (
	"testing"

	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/users"
	userrepofakes "github.com/martory/go-tenant-session/users/repofakes"
	"github.com/stretchr/testify/require"
)

func TestFakeUserRepo(t *testing.T) {
	repo := userrepofakes.NewFakeUserRepo()

	u := &users.User{Email: "Owner@Example.com", Role: users.RoleStoreOwner}
	require.NoError(t, repo.Create(u))
	require.EqualValues(t, 1, u.ID)

	require.ErrorIs(t, repo.Create(&users.User{Email: "owner@example.com"}), errors.ErrUserExists)

	got, err := repo.GetByEmail("OWNER@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.NoError(t, repo.SetBlocked("owner@example.com", true))
	got, err = repo.GetByID(u.ID)
	require.NoError(t, err)
	require.True(t, got.Blocked)

	_, err = repo.GetByID(99)
	require.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestFakeUserRepo_List(t *testing.T) {
	repo := userrepofakes.NewFakeUserRepo()
	for _, e := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, repo.Create(&users.User{Email: e}))
	}

	page, err := repo.List(1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "b@x.com", page[0].Email)

	all, err := repo.List(0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	empty, err := repo.List(5, 1)
	require.NoError(t, err)
	require.Empty(t, empty)
}
