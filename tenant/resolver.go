// Package tenant resolves the active tenant identifier from persisted client state.
package tenant

import (
	"net"
	"strings"

	"github.com/martory/go-tenant-session/storage"
)

// HostFunc returns the host the client is served from, e.g. "acme.martory.com:443"
type HostFunc func() string

// Resolver derives the tenant sent in the x-tenant header. It only reads; it never
// creates or selects stores.
type Resolver struct {
	store storage.Storage
	host  HostFunc
}

// Option configures a Resolver
type Option func(*Resolver)

// WithHost enables the host-name fallback
func WithHost(h HostFunc) Option {
	return func(r *Resolver) { r.host = h }
}

// WithStaticHost enables the host-name fallback with a fixed host
func WithStaticHost(host string) Option {
	return WithHost(func() string { return host })
}

// NewResolver creates a resolver over store
func NewResolver(store storage.Storage, opts ...Option) *Resolver {
	r := &Resolver{store: store}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the first non-empty of: "subdomain", "tenant", "tenant_id", then the
// first label of the host when it has more than two labels. ok is false when nothing
// resolves; callers must then skip tenant-scoped endpoints.
func (r *Resolver) Resolve() (tenant string, ok bool) {
	for _, key := range []string{storage.KeySubdomain, storage.KeyTenant, storage.KeyTenantID} {
		if v, found := r.store.Get(key); found {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	if r.host == nil {
		return "", false
	}
	return FromHost(r.host())
}

// FromHost extracts the tenant label from a host name: "acme.martory.com" gives "acme".
// Hosts with two labels or fewer, and IP addresses, give nothing.
func FromHost(host string) (string, bool) {
	host = strings.TrimSpace(strings.ToLower(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || net.ParseIP(host) != nil {
		return "", false
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 || labels[0] == "" || labels[0] == "www" {
		return "", false
	}
	return labels[0], true
}
