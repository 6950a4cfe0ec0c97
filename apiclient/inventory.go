package apiclient

import (
	"context"
	"net/http"

	"github.com/martory/go-tenant-session/inventory"
	"github.com/martory/go-tenant-session/reports"
)

// The calls in this file are tenant scoped: they fail with ErrNoTenant, without touching
// the network, until a tenant resolves.

type productsResponse struct {
	Products []inventory.Product `json:"products"`
}

type productResponse struct {
	Product *inventory.Product `json:"product"`
}

type movementsResponse struct {
	Movements []inventory.StockMovement `json:"movements"`
}

type movementResponse struct {
	Movement *inventory.StockMovement `json:"movement"`
}

// ListProducts returns the active tenant's products
func (c *Client) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	var resp productsResponse
	req := Request{Method: http.MethodGet, Path: RouteListProducts, TenantScoped: true}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Products == nil {
		return []inventory.Product{}, nil
	}
	return resp.Products, nil
}

// AddProduct creates a product in the active tenant
func (c *Client) AddProduct(ctx context.Context, p inventory.Product) (*inventory.Product, error) {
	var resp productResponse
	req := Request{Method: http.MethodPost, Path: RouteAddProduct, Body: p, TenantScoped: true}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return &p, nil
	}
	return resp.Product, nil
}

// AddStockIn records received stock
func (c *Client) AddStockIn(ctx context.Context, m inventory.StockMovement) (*inventory.StockMovement, error) {
	m.Type = inventory.MovementIn
	return c.addMovement(ctx, RouteAddStockIn, m)
}

// AddStockOut records dispatched stock
func (c *Client) AddStockOut(ctx context.Context, m inventory.StockMovement) (*inventory.StockMovement, error) {
	m.Type = inventory.MovementOut
	return c.addMovement(ctx, RouteAddStockOut, m)
}

// StockHistory returns every stock movement of the active tenant
func (c *Client) StockHistory(ctx context.Context) ([]inventory.StockMovement, error) {
	var resp movementsResponse
	req := Request{Method: http.MethodGet, Path: RouteStockHistory, TenantScoped: true}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Movements == nil {
		return []inventory.StockMovement{}, nil
	}
	return resp.Movements, nil
}

func (c *Client) addMovement(ctx context.Context, route string, m inventory.StockMovement) (*inventory.StockMovement, error) {
	var resp movementResponse
	req := Request{Method: http.MethodPost, Path: route, Body: m, TenantScoped: true}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Movement == nil {
		return &m, nil
	}
	return resp.Movement, nil
}

// Overview is the dashboard summary of the active tenant
type Overview struct {
	Summary     reports.Summary  `json:"summary"`
	ByCategory  []reports.Totals `json:"by_category"`
	TopProducts []reports.Totals `json:"top_products"`
}

// StockOverview returns the dashboard summary of the active tenant
func (c *Client) StockOverview(ctx context.Context) (*Overview, error) {
	var resp Overview
	req := Request{Method: http.MethodGet, Path: RouteStockSummary, TenantScoped: true}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
