package config

import "time"

type ServerConfig interface {
	GetTokenSecret() string
	GetTokenTTL() time.Duration
	GetSuperAdminEmail() string
	GetSuperAdminPassword() string
	GetLoginRatePerMinute() int
	GetUserStoresDisabled() bool
}

type Server struct{}

var _ ServerConfig = Server{}

func (Server) GetTokenSecret() string {
	return GetEnv("TOKEN_SECRET", "martory-dev-secret")
}

func (Server) GetTokenTTL() time.Duration {
	return GetEnvDuration("TOKEN_TTL", 24*time.Hour)
}

func (Server) GetSuperAdminEmail() string {
	return GetEnv("SUPERADMIN_EMAIL", "admin@martory.local")
}

// GetSuperAdminPassword returns an empty string when a password should be generated at boot
func (Server) GetSuperAdminPassword() string {
	return GetEnv("SUPERADMIN_PASSWORD", "")
}

func (Server) GetLoginRatePerMinute() int {
	return GetEnvInt("LOGIN_RATE_PER_MINUTE", 30)
}

// GetUserStoresDisabled simulates a deployment that lacks /auth/user-stores
func (Server) GetUserStoresDisabled() bool {
	return GetEnvBool("DISABLE_USER_STORES", false)
}
