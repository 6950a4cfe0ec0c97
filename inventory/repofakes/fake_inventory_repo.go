package inventoryrepofakes

import (
	"sort"
	"sync"
	"time"

	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/inventory"
)

var _ inventory.Repo = (*FakeInventoryRepo)(nil)

type FakeInventoryRepo struct {
	products   map[int64]*inventory.Product
	movements  []inventory.StockMovement
	nextID     int64
	nextMoveID int64
	now        func() time.Time
	lock       sync.RWMutex
}

func NewFakeInventoryRepo() *FakeInventoryRepo {
	return &FakeInventoryRepo{
		products:   make(map[int64]*inventory.Product),
		nextID:     1,
		nextMoveID: 1,
		now:        time.Now,
	}
}

func (ir *FakeInventoryRepo) AddProduct(product *inventory.Product) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()
	product.ID = ir.nextID
	ir.nextID++
	p := *product
	ir.products[p.ID] = &p
	return nil
}

func (ir *FakeInventoryRepo) GetProduct(storeID, productID int64) (*inventory.Product, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()
	p, ok := ir.products[productID]
	if !ok || p.StoreID != storeID {
		return nil, errors.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (ir *FakeInventoryRepo) ListProducts(storeID int64) ([]inventory.Product, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()
	list := make([]inventory.Product, 0)
	for _, p := range ir.products {
		if p.StoreID == storeID {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (ir *FakeInventoryRepo) AddMovement(movement *inventory.StockMovement) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	p, ok := ir.products[movement.ProductID]
	if !ok || p.StoreID != movement.StoreID {
		return errors.ErrProductNotFound
	}
	if movement.Type == inventory.MovementOut && movement.Quantity > p.Quantity {
		return errors.ErrInsufficientStock
	}
	p.Quantity += movement.Signed()

	movement.ID = ir.nextMoveID
	ir.nextMoveID++
	movement.ProductName = p.Name
	movement.Category = p.Category
	if movement.UnitPrice == 0 {
		movement.UnitPrice = p.Price
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = ir.now().UTC()
	}
	ir.movements = append(ir.movements, *movement)
	return nil
}

// ListMovements returns the store's movements, newest first
func (ir *FakeInventoryRepo) ListMovements(storeID int64) ([]inventory.StockMovement, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()
	list := make([]inventory.StockMovement, 0)
	for _, m := range ir.movements {
		if m.StoreID == storeID {
			list = append(list, m)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}
