package devserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/stores"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyStore stores the tenant resolved from x-tenant
	ContextKeyStore ContextKey = "store"
)

func claimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(ContextKeyClaims).(*Claims)
	return c
}

func storeFrom(ctx context.Context) *stores.Store {
	s, _ := ctx.Value(ContextKeyStore).(*stores.Store)
	return s
}

// RequireAuth validates the Bearer token in the Authorization header
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			claims, err := s.tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				s.logger.Debug().Err(err).Msg("token rejected")
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if s.revoked.IsRevoked(claims.ID) {
				writeError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireSuperAdmin must run after RequireAuth
func (s *Server) RequireSuperAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r.Context())
			if claims == nil || !claims.Role.IsSuperAdmin() {
				writeError(w, http.StatusForbidden, "super admin access required")
				return
			}
			next(w, r)
		}
	}
}

// RequireTenant resolves the x-tenant header to a store the caller may access. The header
// holds a subdomain; a numeric value that matches no subdomain is taken as a store id for
// older clients.
func (s *Server) RequireTenant() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ref := strings.TrimSpace(r.Header.Get("x-tenant"))
			if ref == "" {
				writeError(w, http.StatusBadRequest, "x-tenant header is required")
				return
			}
			store, err := s.lookupStore(ref)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			if !s.canAccess(claimsFrom(r.Context()), store) {
				writeDomainError(w, errors.ErrStoreNotAccessible)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyStore, store)
			next(w, r.WithContext(ctx))
		}
	}
}

func (s *Server) lookupStore(ref string) (*stores.Store, error) {
	st, err := s.repos.Stores.GetBySubdomain(ref)
	if err == nil || !errors.Is(err, errors.ErrStoreNotFound) {
		return st, err
	}
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil && id > 0 {
		return s.repos.Stores.Get(id)
	}
	return nil, err
}

func (s *Server) canAccess(claims *Claims, store *stores.Store) bool {
	if claims == nil || store == nil {
		return false
	}
	return claims.Role.IsSuperAdmin() || store.UserID == claims.UserID()
}
