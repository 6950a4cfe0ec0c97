// Package reports aggregates stock movements already fetched from the backend.
package reports

import (
	"sort"
	"strings"
	"time"

	"github.com/martory/go-tenant-session/inventory"
)

// Totals sums movements of one group
type Totals struct {
	Key       string  `json:"key"`
	In        int64   `json:"in"`
	Out       int64   `json:"out"`
	Net       int64   `json:"net"`
	Value     float64 `json:"value"`
	Movements int     `json:"movements"`
}

func (t *Totals) add(m inventory.StockMovement) {
	switch m.Type {
	case inventory.MovementIn:
		t.In += m.Quantity
	case inventory.MovementOut:
		t.Out += m.Quantity
	}
	t.Net += m.Signed()
	t.Value += float64(m.Quantity) * m.UnitPrice
	t.Movements++
}

// Filter narrows the movements taken into account. Zero values match everything.
type Filter struct {
	From    time.Time
	To      time.Time
	StoreID int64
	Type    inventory.MovementType
}

func (f Filter) match(m inventory.StockMovement) bool {
	if !f.From.IsZero() && m.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !m.CreatedAt.Before(f.To) {
		return false
	}
	if f.StoreID != 0 && m.StoreID != f.StoreID {
		return false
	}
	return f.Type == "" || m.Type == f.Type
}

// Apply returns the movements matching f
func (f Filter) Apply(list []inventory.StockMovement) []inventory.StockMovement {
	out := make([]inventory.StockMovement, 0, len(list))
	for _, m := range list {
		if f.match(m) {
			out = append(out, m)
		}
	}
	return out
}

// ByStore groups by store name, sorted by key
func ByStore(list []inventory.StockMovement) []Totals {
	return groupBy(list, func(m inventory.StockMovement) string {
		return orUnknown(m.StoreName)
	})
}

// ByCategory groups by product category, sorted by key
func ByCategory(list []inventory.StockMovement) []Totals {
	return groupBy(list, func(m inventory.StockMovement) string {
		return orUnknown(m.Category)
	})
}

// ByDay groups by the UTC date of each movement, oldest first
func ByDay(list []inventory.StockMovement) []Totals {
	return groupBy(list, func(m inventory.StockMovement) string {
		return m.CreatedAt.UTC().Format(time.DateOnly)
	})
}

// TopProducts returns the n products with the most stock moved out
func TopProducts(list []inventory.StockMovement, n int) []Totals {
	out := make([]inventory.StockMovement, 0, len(list))
	for _, m := range list {
		if m.Type == inventory.MovementOut {
			out = append(out, m)
		}
	}
	totals := groupBy(out, func(m inventory.StockMovement) string {
		return orUnknown(m.ProductName)
	})
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Out > totals[j].Out
	})
	if n > 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// Summary is the overview card data
type Summary struct {
	TotalIn    int64   `json:"total_in"`
	TotalOut   int64   `json:"total_out"`
	Net        int64   `json:"net"`
	Movements  int     `json:"movements"`
	Products   int     `json:"products"`
	LowStock   int     `json:"low_stock"`
	StockValue float64 `json:"stock_value"`
}

// Summarize builds the overview from movements and the current product list
func Summarize(movements []inventory.StockMovement, products []inventory.Product) Summary {
	var all Totals
	for _, m := range movements {
		all.add(m)
	}
	s := Summary{
		TotalIn:   all.In,
		TotalOut:  all.Out,
		Net:       all.Net,
		Movements: all.Movements,
		Products:  len(products),
	}
	for _, p := range products {
		if p.LowStock() {
			s.LowStock++
		}
		s.StockValue += float64(p.Quantity) * p.Price
	}
	return s
}

func groupBy(list []inventory.StockMovement, key func(inventory.StockMovement) string) []Totals {
	index := map[string]*Totals{}
	for _, m := range list {
		k := key(m)
		t, ok := index[k]
		if !ok {
			t = &Totals{Key: k}
			index[k] = t
		}
		t.add(m)
	}
	out := make([]Totals, 0, len(index))
	for _, t := range index {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "Unknown"
	}
	return s
}
