package directory

import (
	"context"

	"github.com/martory/go-tenant-session/apiclient"
	"github.com/martory/go-tenant-session/stores"
	"github.com/pkg/errors"
)

// TierKind tags the result of one directory tier
type TierKind int

const (
	// TierSuccess stops the walk; its stores are the directory
	TierSuccess TierKind = iota
	// TierUnreachable means nothing answered; the next tier is tried silently
	TierUnreachable
	// TierRejected means the backend answered with an error; the next tier is tried
	TierRejected
	// TierEmpty means a local tier had nothing to offer
	TierEmpty
)

func (k TierKind) String() string {
	switch k {
	case TierSuccess:
		return "success"
	case TierUnreachable:
		return "unreachable"
	case TierRejected:
		return "rejected"
	case TierEmpty:
		return "empty"
	}
	return "unknown"
}

// TierResult is what a Strategy reports
type TierResult struct {
	Kind   TierKind
	Stores []stores.Store
	// Message is the user facing text of a rejection
	Message string
	Err     error
	// Fresh marks stores that came from the backend and may be cached
	Fresh bool
}

// Strategy is one tier of the directory fallback chain
type Strategy interface {
	Name() string
	Load(ctx context.Context) TierResult
}

// StoreAPI is the part of the backend client the HTTP tiers need. *apiclient.Client satisfies it.
type StoreAPI interface {
	UserStores(ctx context.Context) ([]stores.Store, error)
	Profile(ctx context.Context) (*apiclient.ProfileResponse, error)
}

// SessionState is the part of the session the directory reads. *session.Session satisfies it.
type SessionState interface {
	CachedStores() ([]stores.Store, bool)
	CacheStores(list []stores.Store) error
	ActiveStore() (stores.Store, bool)
	ActiveTenant() (string, bool)
	ActiveTenantID() (int64, bool)
}

// Tier names, also used as metric labels
const (
	TierUserStores = "user_stores_endpoint"
	TierProfile    = "profile_endpoint"
	TierCache      = "cached_stores"
	TierSession    = "session_synthesized"
)

// DefaultTiers returns the standard chain: the user-stores endpoint, the profile endpoint,
// the persisted cache, and finally the session's own tenant.
func DefaultTiers(api StoreAPI, sess SessionState) []Strategy {
	return []Strategy{
		UserStoresEndpoint{API: api},
		ProfileEndpoint{API: api},
		CachedStores{Session: sess},
		SessionSynthesized{Session: sess},
	}
}

// UserStoresEndpoint calls GET /auth/user-stores
type UserStoresEndpoint struct {
	API StoreAPI
}

func (UserStoresEndpoint) Name() string { return TierUserStores }

func (s UserStoresEndpoint) Load(ctx context.Context) TierResult {
	list, err := s.API.UserStores(ctx)
	if err != nil {
		return fromCallError(err)
	}
	return TierResult{Kind: TierSuccess, Stores: list, Fresh: true}
}

// ProfileEndpoint calls GET /auth/profile and reads stores or user.stores
type ProfileEndpoint struct {
	API StoreAPI
}

func (ProfileEndpoint) Name() string { return TierProfile }

func (s ProfileEndpoint) Load(ctx context.Context) TierResult {
	p, err := s.API.Profile(ctx)
	if err != nil {
		return fromCallError(err)
	}
	return TierResult{Kind: TierSuccess, Stores: p.AllStores(), Fresh: true}
}

// CachedStores reads the directory persisted by an earlier load or at login
type CachedStores struct {
	Session SessionState
}

func (CachedStores) Name() string { return TierCache }

func (s CachedStores) Load(context.Context) TierResult {
	list, ok := s.Session.CachedStores()
	if !ok || len(list) == 0 {
		return TierResult{Kind: TierEmpty}
	}
	return TierResult{Kind: TierSuccess, Stores: list}
}

// SessionSynthesized builds a one element directory from the session's tenant
type SessionSynthesized struct {
	Session SessionState
}

func (SessionSynthesized) Name() string { return TierSession }

func (s SessionSynthesized) Load(context.Context) TierResult {
	st, ok := s.Session.ActiveStore()
	if !ok {
		return TierResult{Kind: TierEmpty}
	}
	return TierResult{Kind: TierSuccess, Stores: []stores.Store{st}}
}

func fromCallError(err error) TierResult {
	if apiclient.IsUnreachable(err) {
		return TierResult{Kind: TierUnreachable, Err: err}
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return TierResult{Kind: TierRejected, Message: apiErr.Message, Err: err}
	}
	// a 2xx with an unreadable body
	return TierResult{Kind: TierRejected, Message: "invalid response from server", Err: err}
}
