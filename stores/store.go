package stores

import (
	"strconv"
	"strings"
)

// Store is a tenant: one owner's business, addressed by its subdomain.
// Subdomain is unique and is the routing key sent as the x-tenant header.
type Store struct {
	ID        int64   `json:"id"`
	Subdomain string  `json:"subdomain"`
	StoreName string  `json:"store_name"`
	City      *string `json:"city,omitempty"`
	Status    *string `json:"status,omitempty"`
	UserID    int64   `json:"user_id,omitempty"`
	Address   string  `json:"address,omitempty"`
	OwnerName string  `json:"owner_name,omitempty"`
	CNIC      string  `json:"cnic,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Email     string  `json:"email,omitempty"`
}

// Minimal builds the placeholder store used when only the session knows about a tenant.
// Fields beyond id/subdomain/name are left blank.
func Minimal(id int64, subdomain string) Store {
	return Store{
		ID:        id,
		Subdomain: subdomain,
		StoreName: subdomain,
	}
}

// DisplayName returns the store name, falling back to the subdomain
func (s Store) DisplayName() string {
	if strings.TrimSpace(s.StoreName) != "" {
		return s.StoreName
	}
	return s.Subdomain
}

// Same reports whether both values refer to the same tenant.
// IDs win when both are set, otherwise subdomains are compared.
func (s Store) Same(other Store) bool {
	if s.ID != 0 && other.ID != 0 {
		return s.ID == other.ID
	}
	return s.Subdomain != "" && strings.EqualFold(s.Subdomain, other.Subdomain)
}

// FindByID returns the store with the given id
func FindByID(list []Store, id int64) (Store, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}

// FindBySubdomain returns the store with the given subdomain, case-insensitively
func FindBySubdomain(list []Store, subdomain string) (Store, bool) {
	for _, s := range list {
		if strings.EqualFold(s.Subdomain, subdomain) {
			return s, true
		}
	}
	return Store{}, false
}

// Lookup finds a store by a user supplied reference: a numeric id or a subdomain.
func Lookup(list []Store, ref string) (Store, bool) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if s, ok := FindByID(list, id); ok {
			return s, true
		}
	}
	return FindBySubdomain(list, ref)
}

// Contains reports whether target is one of list
func Contains(list []Store, target Store) bool {
	for _, s := range list {
		if s.Same(target) {
			return true
		}
	}
	return false
}
