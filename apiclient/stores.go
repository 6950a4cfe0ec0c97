package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/martory/go-tenant-session/stores"
)

// StoresResponse is the {stores: [...]} envelope
type StoresResponse struct {
	Stores []stores.Store `json:"stores"`
}

// ProfileResponse is returned by /auth/profile. Deployments put the stores either at the
// top level or under "user".
type ProfileResponse struct {
	Stores []stores.Store `json:"stores,omitempty"`
	User   *struct {
		ID     int64          `json:"id"`
		Name   string         `json:"name,omitempty"`
		Email  string         `json:"email,omitempty"`
		Stores []stores.Store `json:"stores,omitempty"`
	} `json:"user,omitempty"`
}

// AllStores returns the top level stores, then the user's, then an empty list
func (p *ProfileResponse) AllStores() []stores.Store {
	if p.Stores != nil {
		return p.Stores
	}
	if p.User != nil && p.User.Stores != nil {
		return p.User.Stores
	}
	return []stores.Store{}
}

type storeResponse struct {
	Store *stores.Store `json:"store"`
}

// UserStores calls /auth/user-stores. A missing field gives an empty list.
func (c *Client) UserStores(ctx context.Context) ([]stores.Store, error) {
	var resp StoresResponse
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: RouteUserStores}, &resp); err != nil {
		return nil, err
	}
	if resp.Stores == nil {
		return []stores.Store{}, nil
	}
	return resp.Stores, nil
}

// Profile calls /auth/profile
func (c *Client) Profile(ctx context.Context) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: RouteProfile}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAllStores lists every store across tenants (super admin). No tenant header.
func (c *Client) GetAllStores(ctx context.Context) ([]stores.Store, error) {
	var resp StoresResponse
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: RouteGetAllStores}, &resp); err != nil {
		return nil, err
	}
	if resp.Stores == nil {
		return []stores.Store{}, nil
	}
	return resp.Stores, nil
}

// CreateStore registers a new store for the current user
func (c *Client) CreateStore(ctx context.Context, s stores.Store) (*stores.Store, error) {
	var resp storeResponse
	if err := c.call(ctx, Request{Method: http.MethodPost, Path: RouteCreateStore, Body: s}, &resp); err != nil {
		return nil, err
	}
	if resp.Store == nil {
		return &s, nil
	}
	return resp.Store, nil
}

// UpdateStore saves changes to the store with s.ID
func (c *Client) UpdateStore(ctx context.Context, s stores.Store) (*stores.Store, error) {
	var resp storeResponse
	path := RouteUpdateStore + strconv.FormatInt(s.ID, 10)
	if err := c.call(ctx, Request{Method: http.MethodPut, Path: path, Body: s}, &resp); err != nil {
		return nil, err
	}
	if resp.Store == nil {
		return &s, nil
	}
	return resp.Store, nil
}

// DeleteStore removes the store with id
func (c *Client) DeleteStore(ctx context.Context, id int64) error {
	path := RouteDeleteStore + strconv.FormatInt(id, 10)
	return c.call(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}
