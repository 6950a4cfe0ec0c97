package apiclient

// Backend route paths
const (
	RouteLogin            = "/auth/login"
	RouteRegister         = "/auth/register"
	RouteUserStores       = "/auth/user-stores"
	RouteProfile          = "/auth/profile"
	RouteLogout           = "/api/logout"
	RouteSuperAdminLogin  = "/superadmin/login"
	RouteSuperAdminLogout = "/superadmin/logout"

	RouteGetAllStores = "/api/getAllStores"
	RouteCreateStore  = "/api/createStore"
	RouteUpdateStore  = "/api/updateStore/" // + id
	RouteDeleteStore  = "/api/deleteStore/" // + id

	RouteListProducts = "/product/getAllProducts"
	RouteAddProduct   = "/product/addProduct"
	RouteAddStockIn   = "/stockin/addStockIn"
	RouteAddStockOut  = "/stockout/addStockOut"
	RouteStockHistory = "/stockhistory/getStockHistory"
	RouteStockSummary = "/stockoverview/getOverview"
)
