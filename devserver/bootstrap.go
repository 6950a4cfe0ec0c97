package devserver

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	internalerrors "github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/users"
	"github.com/pkg/errors"
)

// InitialiseSystem makes sure the super admin account exists.
// Returns the generated password on first creation (empty string if it already exists
// or a password was configured).
func (s *Server) InitialiseSystem() (generatedPassword string, err error) {
	email := s.config.GetSuperAdminEmail()
	if _, err := s.repos.Users.GetByEmail(email); err == nil {
		s.logger.Info().Str("email", email).Msg("Bootstrap: super admin already exists")
		return "", nil
	} else if !internalerrors.Is(err, internalerrors.ErrUserNotFound) {
		return "", errors.Wrap(err, "[InitialiseSystem] lookup super admin")
	}

	password := s.config.GetSuperAdminPassword()
	if password == "" {
		if password, err = generateSecurePassword(); err != nil {
			return "", errors.Wrap(err, "[InitialiseSystem] generate password")
		}
		generatedPassword = password
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return "", errors.Wrap(err, "[InitialiseSystem] hash password")
	}
	admin := &users.User{
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         users.RoleSuperAdmin,
		DateJoined:   time.Now().UTC(),
	}
	if err := s.repos.Users.Create(admin); err != nil {
		return "", errors.Wrap(err, "[InitialiseSystem] create super admin")
	}

	event := s.logger.Info().Str("email", email)
	if generatedPassword != "" {
		event = event.Str("password", generatedPassword)
	}
	event.Msg("Bootstrap: super admin created")
	return generatedPassword, nil
}

func generateSecurePassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
