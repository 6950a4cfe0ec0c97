package devserver

import (
	"net/http"
	"time"

	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/stores"
	"github.com/martory/go-tenant-session/users"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userView is the public profile, with the stores the user owns
type userView struct {
	ID     int64          `json:"id"`
	Name   string         `json:"name,omitempty"`
	Email  string         `json:"email"`
	Role   users.RoleType `json:"role"`
	Stores []stores.Store `json:"stores"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  *userView `json:"user,omitempty"`
	Admin *userView `json:"admin,omitempty"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		token, err := s.tokens.Issue(user)
		if err != nil {
			s.logger.Err(err).Msg("LoginHandler: issue token")
			writeDomainError(w, err)
			return
		}
		view, err := s.userView(user)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authResponse{Token: token, User: view})
	}
}

func (s *Server) SuperAdminLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !user.IsSuperAdmin() {
			writeDomainError(w, errors.ErrInvalidCredentials)
			return
		}
		token, err := s.tokens.Issue(user)
		if err != nil {
			s.logger.Err(err).Msg("SuperAdminLoginHandler: issue token")
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authResponse{Token: token, Admin: &userView{
			ID:     user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
			Stores: []stores.Store{},
		}})
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDomainError(w, err)
			return
		}
		if err := s.validator.ValidateRegistration(req.Name, req.Email, req.Password); err != nil {
			writeDomainError(w, err)
			return
		}
		hash, err := users.HashPassword(req.Password)
		if err != nil {
			s.logger.Err(err).Msg("RegisterHandler: hash password")
			writeDomainError(w, err)
			return
		}
		user := &users.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         users.RoleStoreOwner,
			DateJoined:   time.Now().UTC(),
		}
		if err := s.repos.Users.Create(user); err != nil {
			writeDomainError(w, err)
			return
		}
		token, err := s.tokens.Issue(user)
		if err != nil {
			s.logger.Err(err).Msg("RegisterHandler: issue token")
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, authResponse{Token: token, User: &userView{
			ID:     user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
			Stores: []stores.Store{},
		}})
	}
}

// LogoutHandler revokes the presented token
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims.ExpiresAt != nil {
			s.revoked.Add(claims.ID, claims.ExpiresAt.Time)
		}
		if err := s.repos.Users.SetLoggedIn(claims.Email, false); err != nil {
			s.logger.Warn().Err(err).Msg("LogoutHandler: mark logged out")
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	}
}

// ProfileHandler nests the stores under "user"
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.repos.Users.GetByID(claimsFrom(r.Context()).UserID())
		if err != nil {
			writeDomainError(w, errors.ErrUnauthorized)
			return
		}
		view, err := s.userView(user)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": view})
	}
}

func (s *Server) UserStoresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.ownedStores(claimsFrom(r.Context()).UserID())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"stores": list})
	}
}

func (s *Server) authenticate(r *http.Request) (*users.User, error) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByEmail(req.Email)
	if err != nil || user.Blocked || !user.CheckPassword(req.Password) {
		return nil, errors.ErrInvalidCredentials
	}
	if err := s.repos.Users.SetLoggedIn(user.Email, true); err != nil {
		s.logger.Warn().Err(err).Msg("authenticate: mark logged in")
	}
	return user, nil
}

func (s *Server) userView(user *users.User) (*userView, error) {
	list, err := s.ownedStores(user.ID)
	if err != nil {
		return nil, err
	}
	return &userView{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role, Stores: list}, nil
}

func (s *Server) ownedStores(userID int64) ([]stores.Store, error) {
	owned, err := s.repos.Stores.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	list := make([]stores.Store, 0, len(owned))
	for _, st := range owned {
		list = append(list, *st)
	}
	return list, nil
}
