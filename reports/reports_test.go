package reports_test

import (
	"testing"
	"time"

	"github.com/martory/go-tenant-session/inventory"
	"github.com/martory/go-tenant-session/reports"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
var day2 = day1.Add(24 * time.Hour)

func movements() []inventory.StockMovement {
	return []inventory.StockMovement{
		{ProductName: "Rice", Category: "Grocery", StoreID: 1, StoreName: "Alpha", Type: inventory.MovementIn, Quantity: 10, UnitPrice: 2, CreatedAt: day1},
		{ProductName: "Rice", Category: "Grocery", StoreID: 1, StoreName: "Alpha", Type: inventory.MovementOut, Quantity: 4, UnitPrice: 2, CreatedAt: day2},
		{ProductName: "Soap", Category: "Household", StoreID: 2, StoreName: "Beta", Type: inventory.MovementOut, Quantity: 6, UnitPrice: 1, CreatedAt: day2},
		{ProductName: "Tea", Category: "", StoreID: 2, StoreName: "Beta", Type: inventory.MovementIn, Quantity: 3, CreatedAt: day1},
	}
}

func TestByStore(t *testing.T) {
	got := reports.ByStore(movements())

	require.Len(t, got, 2)
	require.Equal(t, reports.Totals{Key: "Alpha", In: 10, Out: 4, Net: 6, Value: 28, Movements: 2}, got[0])
	require.Equal(t, "Beta", got[1].Key)
	require.EqualValues(t, -3, got[1].Net)
}

func TestByCategory(t *testing.T) {
	got := reports.ByCategory(movements())

	keys := make([]string, 0, len(got))
	for _, g := range got {
		keys = append(keys, g.Key)
	}
	require.Equal(t, []string{"Grocery", "Household", "Unknown"}, keys)
}

func TestByDay(t *testing.T) {
	got := reports.ByDay(movements())

	require.Len(t, got, 2)
	require.Equal(t, "2026-03-01", got[0].Key)
	require.EqualValues(t, 13, got[0].In)
	require.EqualValues(t, 10, got[1].Out)
}

func TestTopProducts(t *testing.T) {
	got := reports.TopProducts(movements(), 1)

	require.Len(t, got, 1)
	require.Equal(t, "Soap", got[0].Key)
	require.EqualValues(t, 6, got[0].Out)

	require.Len(t, reports.TopProducts(movements(), 0), 2)
}

func TestFilter(t *testing.T) {
	f := reports.Filter{From: day2, StoreID: 2}
	got := f.Apply(movements())
	require.Len(t, got, 1)
	require.Equal(t, "Soap", got[0].ProductName)

	outOnly := reports.Filter{Type: inventory.MovementOut}.Apply(movements())
	require.Len(t, outOnly, 2)

	require.Len(t, reports.Filter{To: day2}.Apply(movements()), 2)
	require.NotNil(t, reports.Filter{StoreID: 99}.Apply(nil))
}

func TestSummarize(t *testing.T) {
	products := []inventory.Product{
		{Name: "Rice", Quantity: 6, Price: 2, Threshold: 10},
		{Name: "Soap", Quantity: 20, Price: 1, Threshold: 5},
	}

	s := reports.Summarize(movements(), products)

	require.EqualValues(t, 13, s.TotalIn)
	require.EqualValues(t, 10, s.TotalOut)
	require.EqualValues(t, 3, s.Net)
	require.Equal(t, 4, s.Movements)
	require.Equal(t, 2, s.Products)
	require.Equal(t, 1, s.LowStock)
	require.InDelta(t, 32.0, s.StockValue, 0.001)
}
