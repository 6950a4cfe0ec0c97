// Package devserver is an in-memory Martory backend. It serves the routes the client
// library calls so the session, directory and switch flows can run end to end locally
// and in tests.
package devserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/martory/go-tenant-session/internal/config"
	"github.com/martory/go-tenant-session/internal/metrics"
	"github.com/martory/go-tenant-session/inventory"
	inventoryrepofakes "github.com/martory/go-tenant-session/inventory/repofakes"
	"github.com/martory/go-tenant-session/stores"
	storerepofakes "github.com/martory/go-tenant-session/stores/repofakes"
	"github.com/martory/go-tenant-session/users"
	userrepofakes "github.com/martory/go-tenant-session/users/repofakes"
	"github.com/martory/go-tenant-session/validation"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repos groups the storage the backend runs on
type Repos struct {
	Users     users.UserRepo
	Stores    stores.Repo
	Inventory inventory.Repo
}

// NewInMemoryRepos returns empty in-memory repositories
func NewInMemoryRepos() Repos {
	return Repos{
		Users:     userrepofakes.NewFakeUserRepo(),
		Stores:    storerepofakes.NewFakeStoreRepo(),
		Inventory: inventoryrepofakes.NewFakeInventoryRepo(),
	}
}

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	repos     Repos
	tokens    *TokenIssuer
	revoked   *revocationList
	limiter   *ipRateLimiter
	validator *validation.Validator
	registry  *prometheus.Registry
	metrics   metrics.Recorder
	logger    zerolog.Logger

	generatedPassword string
}

// Option configures the Server
type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(cfg config.Config, repos Repos, opts ...Option) (*Server, error) {
	registry := prometheus.NewRegistry()
	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		repos:     repos,
		tokens:    NewTokenIssuer(NewHMACSigner(cfg.GetTokenSecret()), cfg.GetTokenTTL()),
		revoked:   newRevocationList(),
		limiter:   newIPRateLimiter(cfg.GetLoginRatePerMinute()),
		validator: validation.NewValidator(),
		registry:  registry,
		metrics:   metrics.NewCollector(registry),
		logger:    log.Logger,
	}
	for _, o := range opts {
		o(s)
	}

	password, err := s.InitialiseSystem()
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to initialise the system")
	}
	s.generatedPassword = password

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

// GeneratedPassword returns the super admin password created at boot, if one was generated
func (s *Server) GeneratedPassword() string {
	return s.generatedPassword
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	s.logger.Info().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
