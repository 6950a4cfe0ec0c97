package inventory

// Repo stores products and stock movements per store
type Repo interface {
	AddProduct(product *Product) error
	GetProduct(storeID, productID int64) (*Product, error)
	ListProducts(storeID int64) ([]Product, error)

	// AddMovement records the movement and adjusts the product quantity.
	// A stock-out larger than the quantity on hand is refused.
	AddMovement(movement *StockMovement) error
	ListMovements(storeID int64) ([]StockMovement, error)
}
