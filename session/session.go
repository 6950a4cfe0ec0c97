// Package session holds the client-side session: the bearer token plus the active tenant
// selection, persisted through a storage.Storage. It has an explicit lifecycle: Login creates
// it, SetTenant mutates it on every store switch, and Logout removes every persisted key.
package session

import (
	"strconv"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/martory/go-tenant-session/storage"
	"github.com/martory/go-tenant-session/stores"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RoleType is the kind of account the session was created for
type RoleType string

const (
	RoleStoreOwner RoleType = "store_owner"
	RoleSuperAdmin RoleType = "super_admin"
)

// User is the profile returned at login and persisted under the "user" key.
type User struct {
	ID     int64          `json:"id"`
	Name   string         `json:"name,omitempty"`
	Email  string         `json:"email,omitempty"`
	Role   RoleType       `json:"role,omitempty"`
	Stores []stores.Store `json:"stores,omitempty"`
}

// DisplaySettings are per-browser preferences; they survive store switches.
type DisplaySettings struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
	Currency string `json:"currency"`
}

// DefaultDisplaySettings is returned when nothing has been saved yet
var DefaultDisplaySettings = DisplaySettings{
	Theme:    "light",
	Language: "en",
	Currency: "PKR",
}

// Session reads and writes the persisted session keys.
type Session struct {
	store  storage.Storage
	logger zerolog.Logger
	lock   sync.Mutex
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger used for best-effort warnings
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session over store
func New(store storage.Storage, opts ...Option) *Session {
	s := &Session{
		store:  store,
		logger: log.Logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Storage exposes the underlying persisted state, for the tenant resolver.
func (s *Session) Storage() storage.Storage {
	return s.store
}

// Login starts a session. Any previous tenant selection is dropped, display settings are
// kept, and stores embedded in the user profile are cached for the directory's offline tier.
func (s *Session) Login(token string, user *User, role RoleType) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("[Session.Login] token is required")
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	prefs, hasPrefs := s.store.Get(storage.KeyDisplaySettings)
	if err := s.store.Clear(); err != nil {
		return errors.Wrap(err, "[Session.Login] clear")
	}
	values := map[string]string{
		storage.KeyToken:       token,
		storage.KeyTokenCookie: token,
		storage.KeyRole:        string(role),
	}
	if hasPrefs {
		values[storage.KeyDisplaySettings] = prefs
	}
	if err := s.store.SetMany(values); err != nil {
		return errors.Wrap(err, "[Session.Login] store token")
	}
	if user != nil {
		if user.Role == "" {
			user.Role = role
		}
		if err := storage.SetJSON(s.store, storage.KeyUser, user); err != nil {
			return errors.Wrap(err, "[Session.Login] store user")
		}
		if len(user.Stores) > 0 {
			if err := storage.SetJSON(s.store, storage.KeyUserStores, user.Stores); err != nil {
				return errors.Wrap(err, "[Session.Login] store user stores")
			}
		}
	}
	return nil
}

// Logout destroys the session: every persisted key is removed, display settings included.
func (s *Session) Logout() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.store.Clear(); err != nil {
		return errors.Wrap(err, "[Session.Logout] clear")
	}
	return nil
}

// Token returns the bearer token, or "" when logged out
func (s *Session) Token() string {
	if t, ok := s.store.Get(storage.KeyToken); ok {
		return strings.TrimSpace(t)
	}
	if t, ok := s.store.Get(storage.KeyTokenCookie); ok {
		return strings.TrimSpace(t)
	}
	return ""
}

// IsAuthenticated reports whether a token is present. Validity is the backend's call.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// TokenExpiry peeks at the exp claim of a JWT bearer token without verifying it.
// Opaque tokens report false.
func (s *Session) TokenExpiry() (time.Time, bool) {
	raw := s.Token()
	if raw == "" {
		return time.Time{}, false
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Role returns the role recorded at login
func (s *Session) Role() RoleType {
	r, _ := s.store.Get(storage.KeyRole)
	return RoleType(r)
}

// User returns the persisted user profile
func (s *Session) User() (*User, bool) {
	var u User
	ok, err := storage.GetJSON(s.store, storage.KeyUser, &u)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Session: unreadable user profile")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &u, true
}

// ActiveTenant returns the selected subdomain
func (s *Session) ActiveTenant() (string, bool) {
	v, ok := s.store.Get(storage.KeySubdomain)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// ActiveTenantID returns the selected store id. A value that is not a positive integer
// (legacy entries sometimes hold a subdomain) reports false.
func (s *Session) ActiveTenantID() (int64, bool) {
	v, ok := s.store.Get(storage.KeyTenantID)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ActiveStore returns a minimal store when both the subdomain and a numeric id are set.
func (s *Session) ActiveStore() (stores.Store, bool) {
	sub, okSub := s.ActiveTenant()
	id, okID := s.ActiveTenantID()
	if !okSub || !okID {
		return stores.Store{}, false
	}
	return stores.Minimal(id, sub), true
}

// SetTenant records the active tenant. Subdomain and id are written as one unit.
func (s *Session) SetTenant(subdomain string, id int64) error {
	subdomain = strings.TrimSpace(subdomain)
	if subdomain == "" || id <= 0 {
		return errors.Errorf("[Session.SetTenant] invalid tenant %q/%d", subdomain, id)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	err := s.store.SetMany(map[string]string{
		storage.KeySubdomain: subdomain,
		storage.KeyTenantID:  strconv.FormatInt(id, 10),
	})
	if err != nil {
		return errors.Wrap(err, "[Session.SetTenant] persist")
	}
	return nil
}

// ClearTenant removes the active tenant, including the legacy "tenant" key.
func (s *Session) ClearTenant() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.store.Remove(storage.KeySubdomain, storage.KeyTenantID, storage.KeyTenant); err != nil {
		return errors.Wrap(err, "[Session.ClearTenant] remove")
	}
	return nil
}

// CachedStores returns the last known directory: "user_stores" first, then the stores
// embedded in the persisted user profile.
func (s *Session) CachedStores() ([]stores.Store, bool) {
	var list []stores.Store
	ok, err := storage.GetJSON(s.store, storage.KeyUserStores, &list)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Session: unreadable cached stores")
	}
	if ok && err == nil {
		return list, true
	}
	if u, ok := s.User(); ok && u.Stores != nil {
		return u.Stores, true
	}
	return nil, false
}

// CacheStores replaces the cached directory
func (s *Session) CacheStores(list []stores.Store) error {
	if list == nil {
		list = []stores.Store{}
	}
	return errors.Wrap(storage.SetJSON(s.store, storage.KeyUserStores, list), "[Session.CacheStores]")
}

// DisplaySettings returns the saved preferences, with defaults for missing fields
func (s *Session) DisplaySettings() DisplaySettings {
	ds := DefaultDisplaySettings
	var saved DisplaySettings
	ok, err := storage.GetJSON(s.store, storage.KeyDisplaySettings, &saved)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Session: unreadable display settings")
	}
	if !ok || err != nil {
		return ds
	}
	if saved.Theme != "" {
		ds.Theme = saved.Theme
	}
	if saved.Language != "" {
		ds.Language = saved.Language
	}
	if saved.Currency != "" {
		ds.Currency = saved.Currency
	}
	return ds
}

// SetDisplaySettings saves preferences
func (s *Session) SetDisplaySettings(ds DisplaySettings) error {
	return errors.Wrap(storage.SetJSON(s.store, storage.KeyDisplaySettings, ds), "[Session.SetDisplaySettings]")
}
