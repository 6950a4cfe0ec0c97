// Package storage holds the persisted client state: the Go counterpart of the dashboard's
// local storage. Values are strings; structured values are stored as JSON.
package storage

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Persisted keys
const (
	KeySubdomain       = "subdomain"
	KeyTenant          = "tenant"
	KeyTenantID        = "tenant_id"
	KeyToken           = "token"
	KeyTokenCookie     = "cookie:token"
	KeyUser            = "user"
	KeyUserStores      = "user_stores"
	KeyDisplaySettings = "display_settings"
	KeyRole            = "role"
)

// Storage is a flat string key/value store.
type Storage interface {
	// Get returns the value and whether the key is present
	Get(key string) (string, bool)

	// Set writes a value
	Set(key, value string) error

	// SetMany writes all values in one unit
	SetMany(values map[string]string) error

	// Remove deletes keys, missing keys are ignored
	Remove(keys ...string) error

	// Clear deletes every key
	Clear() error
}

// GetJSON decodes the value under key into out.
// A missing key reports false with no error.
func GetJSON(s Storage, key string, out any) (bool, error) {
	raw, ok := s.Get(key)
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, errors.Wrapf(err, "[storage.GetJSON] decode %q", key)
	}
	return true, nil
}

// SetJSON encodes value and writes it under key
func SetJSON(s Storage, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "[storage.SetJSON] encode %q", key)
	}
	return s.Set(key, string(raw))
}
