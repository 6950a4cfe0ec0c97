package switcher_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/martory/go-tenant-session/apiclient"
	"github.com/martory/go-tenant-session/directory"
	"github.com/martory/go-tenant-session/events"
	internalerrors "github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/session"
	"github.com/martory/go-tenant-session/storage"
	"github.com/martory/go-tenant-session/stores"
	"github.com/martory/go-tenant-session/switcher"
	"github.com/martory/go-tenant-session/tenant"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	*storage.Memory
}

func (failingStorage) SetMany(map[string]string) error {
	return errors.New("disk full")
}

type fakeDirectory struct {
	list      []stores.Store
	afterLoad []stores.Store
	refreshes int
}

func (d *fakeDirectory) Contains(target stores.Store) bool {
	return stores.Contains(d.list, target)
}

func (d *fakeDirectory) Refresh(context.Context) (directory.Result, error) {
	d.refreshes++
	if d.afterLoad != nil {
		d.list = d.afterLoad
	}
	return directory.Result{Stores: d.list}, nil
}

type testFixture struct {
	store    storage.Storage
	session  *session.Session
	bus      *events.Bus
	received []events.StoreChanged
}

func setupTestFixture(t *testing.T, store storage.Storage) *testFixture {
	t.Helper()
	f := &testFixture{
		store:   store,
		session: session.New(store),
		bus:     events.NewBus(),
	}
	f.bus.SubscribeFunc(func(ev events.StoreChanged) { f.received = append(f.received, ev) })
	return f
}

func TestSwitch_PersistsAndPublishesOnce(t *testing.T) {
	f := setupTestFixture(t, storage.NewMemory())
	c := switcher.New(f.session, f.bus)

	switched, err := c.Switch(context.Background(), stores.Store{ID: 7, Subdomain: "acme"})

	require.NoError(t, err)
	require.True(t, switched)
	sub, _ := f.store.Get(storage.KeySubdomain)
	id, _ := f.store.Get(storage.KeyTenantID)
	require.Equal(t, "acme", sub)
	require.Equal(t, "7", id)
	require.Len(t, f.received, 1)
	require.EqualValues(t, 7, f.received[0].Store.ID)
	require.Equal(t, switcher.Idle, c.State())
}

func TestSwitch_SameStoreIsNoop(t *testing.T) {
	f := setupTestFixture(t, storage.NewMemory())
	require.NoError(t, f.session.SetTenant("acme", 7))
	c := switcher.New(f.session, f.bus)
	ran := false

	switched, err := c.Switch(context.Background(), stores.Store{ID: 7, Subdomain: "acme"}, func() { ran = true })

	require.NoError(t, err)
	require.False(t, switched)
	require.Empty(t, f.received)
	require.False(t, ran)
	require.False(t, c.CanSwitchTo(stores.Store{ID: 7, Subdomain: "acme"}))
	require.True(t, c.CanSwitchTo(stores.Store{ID: 8, Subdomain: "beta"}))
}

func TestSwitch_ContinuationsRunAfterPublish(t *testing.T) {
	f := setupTestFixture(t, storage.NewMemory())
	c := switcher.New(f.session, f.bus)
	var order []string
	f.bus.SubscribeFunc(func(events.StoreChanged) {
		order = append(order, "event:"+c.State().String())
	})

	_, err := c.Switch(context.Background(), stores.Store{ID: 2, Subdomain: "b"},
		func() { order = append(order, "navigate:"+c.State().String()) },
		func() { order = append(order, "refresh") },
	)

	require.NoError(t, err)
	require.Equal(t, []string{"event:switching", "navigate:idle", "refresh"}, order)
}

func TestSwitch_PersistFailure(t *testing.T) {
	f := setupTestFixture(t, failingStorage{Memory: storage.NewMemory()})
	c := switcher.New(f.session, f.bus)
	ran := false

	switched, err := c.Switch(context.Background(), stores.Store{ID: 7, Subdomain: "acme"}, func() { ran = true })

	require.False(t, switched)
	require.ErrorIs(t, err, internalerrors.ErrSwitchFailed)
	require.ErrorContains(t, err, "[Coordinator.Switch] persist acme")
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, "failed to switch store", switcher.UserMessage(err))
	require.Equal(t, switcher.Failed, c.State())
	require.Equal(t, err, c.Err())
	require.Empty(t, f.received)
	require.False(t, ran)

	c.Reset()
	require.Equal(t, switcher.Idle, c.State())
	require.NoError(t, c.Err())
}

func TestSwitch_InvalidTarget(t *testing.T) {
	f := setupTestFixture(t, storage.NewMemory())
	c := switcher.New(f.session, f.bus)

	_, err := c.Switch(context.Background(), stores.Store{Subdomain: "acme"})

	require.ErrorIs(t, err, internalerrors.ErrInvalidRequest)
	require.Empty(t, f.received)
	require.False(t, c.CanSwitchTo(stores.Store{Subdomain: "acme"}))
}

func TestSwitch_DirectoryValidation(t *testing.T) {
	t.Run("missing store is refreshed once then denied", func(t *testing.T) {
		f := setupTestFixture(t, storage.NewMemory())
		dir := &fakeDirectory{list: []stores.Store{{ID: 1, Subdomain: "a"}}}
		c := switcher.New(f.session, f.bus, switcher.WithDirectory(dir))

		_, err := c.Switch(context.Background(), stores.Store{ID: 3, Subdomain: "c"})

		require.ErrorIs(t, err, internalerrors.ErrStoreNotAccessible)
		require.Equal(t, "you do not have access to this store", switcher.UserMessage(err))
		require.Equal(t, 1, dir.refreshes)
		require.Empty(t, f.received)
		_, ok := f.session.ActiveTenant()
		require.False(t, ok)
	})

	t.Run("refresh finds a new store", func(t *testing.T) {
		f := setupTestFixture(t, storage.NewMemory())
		dir := &fakeDirectory{
			list:      []stores.Store{{ID: 1, Subdomain: "a"}},
			afterLoad: []stores.Store{{ID: 1, Subdomain: "a"}, {ID: 3, Subdomain: "c"}},
		}
		c := switcher.New(f.session, f.bus, switcher.WithDirectory(dir))

		switched, err := c.Switch(context.Background(), stores.Store{ID: 3, Subdomain: "c"})

		require.NoError(t, err)
		require.True(t, switched)
		require.Equal(t, 1, dir.refreshes)
	})

	t.Run("known store skips refresh", func(t *testing.T) {
		f := setupTestFixture(t, storage.NewMemory())
		dir := &fakeDirectory{list: []stores.Store{{ID: 1, Subdomain: "a"}}}
		c := switcher.New(f.session, f.bus, switcher.WithDirectory(dir))

		_, err := c.Switch(context.Background(), stores.Store{ID: 1, Subdomain: "a"})

		require.NoError(t, err)
		require.Zero(t, dir.refreshes)
	})
}

func TestScenario_LoginLoadSwitch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiclient.RouteUserStores || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"stores": []stores.Store{
			{ID: 1, Subdomain: "a"},
			{ID: 2, Subdomain: "b"},
		}})
	}))
	defer srv.Close()

	store := storage.NewMemory()
	sess := session.New(store)
	resolver := tenant.NewResolver(store)
	client := apiclient.New(srv.URL, apiclient.NewHeaderBuilder(sess, resolver))
	dir := directory.New(
		directory.NewLoader(directory.DefaultTiers(client, sess), directory.WithCache(sess)),
		sess,
	)
	bus := events.NewBus()
	var received []events.StoreChanged
	bus.SubscribeFunc(func(ev events.StoreChanged) { received = append(received, ev) })
	c := switcher.New(sess, bus, switcher.WithDirectory(dir))
	ctx := context.Background()

	require.NoError(t, sess.Login("tok", &session.User{ID: 1}, session.RoleStoreOwner))
	res, err := dir.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, res.Stores, 2)

	_, ok := resolver.Resolve()
	require.False(t, ok)
	require.Nil(t, dir.Current())

	switched, err := c.Switch(ctx, stores.Store{ID: 2, Subdomain: "b"})
	require.NoError(t, err)
	require.True(t, switched)

	got, ok := resolver.Resolve()
	require.True(t, ok)
	require.Equal(t, "b", got)
	require.NotNil(t, dir.Current())
	require.EqualValues(t, 2, dir.Current().ID)
	require.Len(t, received, 1)
}
