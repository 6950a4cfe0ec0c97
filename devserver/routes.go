package devserver

import (
	"net/http"

	"github.com/martory/go-tenant-session/internal/metrics"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler(s.registry))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.RequireAuth())...))
	if s.config.GetUserStoresDisabled() {
		// Older deployments have no such endpoint and the connection just drops
		s.RegisterRouteFunc("GET "+RouteUserStores, s.DropConnectionHandler())
	} else {
		s.RegisterRouteHandler("GET "+RouteUserStores, ChainMiddleware(s.UserStoresHandler(), s.APIMiddleware(s.RequireAuth())...))
	}

	// SUPER ADMIN
	s.RegisterRouteHandler("POST "+RouteSuperAdminLogin, ChainMiddleware(s.SuperAdminLoginHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteSuperAdminLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperAdmin())...))
	s.RegisterRouteHandler("GET "+RouteGetAllStores, ChainMiddleware(s.GetAllStoresHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperAdmin())...))

	// STORES
	s.RegisterRouteHandler("POST "+RouteCreateStore, ChainMiddleware(s.CreateStoreHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PUT "+RouteUpdateStore, ChainMiddleware(s.UpdateStoreHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteDeleteStore, ChainMiddleware(s.DeleteStoreHandler(), s.APIMiddleware(s.RequireAuth())...))

	// TENANT SCOPED
	s.RegisterRouteHandler("GET "+RouteListProducts, ChainMiddleware(s.ListProductsHandler(), s.TenantMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAddProduct, ChainMiddleware(s.AddProductHandler(), s.TenantMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAddStockIn, ChainMiddleware(s.AddStockHandler(true), s.TenantMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAddStockOut, ChainMiddleware(s.AddStockHandler(false), s.TenantMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStockHistory, ChainMiddleware(s.StockHistoryHandler(), s.TenantMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStockOverview, ChainMiddleware(s.StockOverviewHandler(), s.TenantMiddleware()...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.CorsMiddleware))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// DropConnectionHandler closes the connection without answering
func (s *Server) DropConnectionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.NotFound(w, r)
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	}
}
