package storerepofakes

import (
	"sort"
	"strings"
	"sync"

	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/stores"
)

var _ stores.Repo = (*FakeStoreRepo)(nil)

// FakeStoreRepo keeps stores in memory. IDs are assigned sequentially from 1.
type FakeStoreRepo struct {
	stores map[int64]*stores.Store
	nextID int64
	lock   sync.RWMutex
}

func NewFakeStoreRepo() *FakeStoreRepo {
	return &FakeStoreRepo{
		stores: make(map[int64]*stores.Store),
		nextID: 1,
	}
}

func (sr *FakeStoreRepo) Create(store *stores.Store) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	if sr.subdomainTaken(store.Subdomain, 0) {
		return errors.ErrSubdomainTaken
	}
	store.ID = sr.nextID
	sr.nextID++
	s := *store
	sr.stores[s.ID] = &s
	return nil
}

func (sr *FakeStoreRepo) Update(store *stores.Store) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	if _, ok := sr.stores[store.ID]; !ok {
		return errors.ErrStoreNotFound
	}
	if sr.subdomainTaken(store.Subdomain, store.ID) {
		return errors.ErrSubdomainTaken
	}
	s := *store
	sr.stores[s.ID] = &s
	return nil
}

func (sr *FakeStoreRepo) Delete(id int64) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	if _, ok := sr.stores[id]; !ok {
		return errors.ErrStoreNotFound
	}
	delete(sr.stores, id)
	return nil
}

func (sr *FakeStoreRepo) Get(id int64) (*stores.Store, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	s, ok := sr.stores[id]
	if !ok {
		return nil, errors.ErrStoreNotFound
	}
	c := *s
	return &c, nil
}

func (sr *FakeStoreRepo) GetBySubdomain(subdomain string) (*stores.Store, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	for _, s := range sr.stores {
		if strings.EqualFold(s.Subdomain, subdomain) {
			c := *s
			return &c, nil
		}
	}
	return nil, errors.ErrStoreNotFound
}

func (sr *FakeStoreRepo) ListByUser(userID int64) ([]*stores.Store, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	list := make([]*stores.Store, 0)
	for _, s := range sr.stores {
		if s.UserID == userID {
			c := *s
			list = append(list, &c)
		}
	}
	sortByID(list)
	return list, nil
}

func (sr *FakeStoreRepo) List(offset, limit int) ([]*stores.Store, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	list := make([]*stores.Store, 0, len(sr.stores))
	for _, s := range sr.stores {
		c := *s
		list = append(list, &c)
	}
	sortByID(list)

	if offset >= len(list) {
		return []*stores.Store{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}

func (sr *FakeStoreRepo) subdomainTaken(subdomain string, exceptID int64) bool {
	for id, s := range sr.stores {
		if id != exceptID && strings.EqualFold(s.Subdomain, subdomain) {
			return true
		}
	}
	return false
}

func sortByID(list []*stores.Store) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
}
