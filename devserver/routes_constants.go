package devserver

// Route path constants
// All backend routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthRegister = "/auth/register"
	RouteUserStores   = "/auth/user-stores"
	RouteProfile      = "/auth/profile"
	RouteLogout       = "/api/logout"

	// Super Admin Routes
	RouteSuperAdminLogin  = "/superadmin/login"
	RouteSuperAdminLogout = "/superadmin/logout"
	RouteGetAllStores     = "/api/getAllStores"

	// Store Routes
	RouteCreateStore = "/api/createStore"
	RouteUpdateStore = "/api/updateStore/{id}"
	RouteDeleteStore = "/api/deleteStore/{id}"

	// Tenant scoped Routes
	RouteListProducts  = "/product/getAllProducts"
	RouteAddProduct    = "/product/addProduct"
	RouteAddStockIn    = "/stockin/addStockIn"
	RouteAddStockOut   = "/stockout/addStockOut"
	RouteStockHistory  = "/stockhistory/getStockHistory"
	RouteStockOverview = "/stockoverview/getOverview"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
