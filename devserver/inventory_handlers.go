package devserver

import (
	"net/http"
	"strings"

	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/inventory"
	"github.com/martory/go-tenant-session/reports"
)

func (s *Server) ListProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.repos.Inventory.ListProducts(storeFrom(r.Context()).ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": list})
	}
}

func (s *Server) AddProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p inventory.Product
		if err := decodeJSON(r, &p); err != nil {
			writeDomainError(w, err)
			return
		}
		if strings.TrimSpace(p.Name) == "" || p.Price < 0 || p.Quantity < 0 {
			writeDomainError(w, errors.Wrapf(errors.ErrInvalidRequest, "product"))
			return
		}
		p.StoreID = storeFrom(r.Context()).ID
		if err := s.repos.Inventory.AddProduct(&p); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": p})
	}
}

// AddStockHandler records a stock-in when in is true, else a stock-out
func (s *Server) AddStockHandler(in bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m inventory.StockMovement
		if err := decodeJSON(r, &m); err != nil {
			writeDomainError(w, err)
			return
		}
		if m.Quantity <= 0 {
			writeDomainError(w, errors.Wrapf(errors.ErrInvalidRequest, "quantity must be positive"))
			return
		}
		store := storeFrom(r.Context())
		m.ID = 0
		m.StoreID = store.ID
		m.StoreName = store.DisplayName()
		m.Type = inventory.MovementOut
		if in {
			m.Type = inventory.MovementIn
		}
		if err := s.repos.Inventory.AddMovement(&m); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"movement": m})
	}
}

func (s *Server) StockHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.repos.Inventory.ListMovements(storeFrom(r.Context()).ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"movements": list})
	}
}

func (s *Server) StockOverviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := storeFrom(r.Context()).ID
		movements, err := s.repos.Inventory.ListMovements(storeID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		products, err := s.repos.Inventory.ListProducts(storeID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"summary":      reports.Summarize(movements, products),
			"by_category":  reports.ByCategory(movements),
			"top_products": reports.TopProducts(movements, 5),
		})
	}
}
