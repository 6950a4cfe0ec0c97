package apiclient

import (
	"context"
	"net/http"

	"github.com/martory/go-tenant-session/session"
	"github.com/pkg/errors"
)

// Credentials is the login form
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by the login and register endpoints. Super admin logins
// answer with "admin" instead of "user".
type AuthResponse struct {
	Token   string        `json:"token"`
	User    *session.User `json:"user,omitempty"`
	Admin   *session.User `json:"admin,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Account returns whichever profile the backend sent
func (r *AuthResponse) Account() *session.User {
	if r.User != nil {
		return r.User
	}
	return r.Admin
}

// Login calls /auth/login. No tenant header is needed.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	return c.authenticate(ctx, RouteLogin, creds)
}

// Register calls /auth/register
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.call(ctx, Request{Method: http.MethodPost, Path: RouteRegister, Body: reg}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SuperAdminLogin calls /superadmin/login
func (c *Client) SuperAdminLogin(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	return c.authenticate(ctx, RouteSuperAdminLogin, creds)
}

// Logout calls /api/logout
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: RouteLogout}, nil)
}

// SuperAdminLogout calls /superadmin/logout
func (c *Client) SuperAdminLogout(ctx context.Context) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: RouteSuperAdminLogout}, nil)
}

func (c *Client) authenticate(ctx context.Context, route string, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.call(ctx, Request{Method: http.MethodPost, Path: route, Body: creds}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.Errorf("[Client.authenticate] %s returned no token", route)
	}
	return &resp, nil
}

// Authenticator ties the login endpoints to the session lifecycle.
type Authenticator struct {
	client  *Client
	session *session.Session
}

func NewAuthenticator(client *Client, sess *session.Session) *Authenticator {
	return &Authenticator{client: client, session: sess}
}

// Login authenticates a store owner and starts the session
func (a *Authenticator) Login(ctx context.Context, creds Credentials) (*session.User, error) {
	resp, err := a.client.Login(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.Login]")
	}
	if err := a.session.Login(resp.Token, resp.Account(), session.RoleStoreOwner); err != nil {
		return nil, errors.Wrap(err, "[Authenticator.Login]")
	}
	return resp.Account(), nil
}

// Register creates the account; when the backend returns a token the session starts too
func (a *Authenticator) Register(ctx context.Context, reg Registration) (*session.User, error) {
	resp, err := a.client.Register(ctx, reg)
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.Register]")
	}
	if resp.Token != "" {
		if err := a.session.Login(resp.Token, resp.Account(), session.RoleStoreOwner); err != nil {
			return nil, errors.Wrap(err, "[Authenticator.Register]")
		}
	}
	return resp.Account(), nil
}

// SuperAdminLogin authenticates a super admin and starts the session
func (a *Authenticator) SuperAdminLogin(ctx context.Context, creds Credentials) (*session.User, error) {
	resp, err := a.client.SuperAdminLogin(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.SuperAdminLogin]")
	}
	if err := a.session.Login(resp.Token, resp.Account(), session.RoleSuperAdmin); err != nil {
		return nil, errors.Wrap(err, "[Authenticator.SuperAdminLogin]")
	}
	return resp.Account(), nil
}

// Logout tells the backend, then destroys the local session whatever the backend said.
// The backend error, if any, is returned after the local state is gone.
func (a *Authenticator) Logout(ctx context.Context) error {
	var remoteErr error
	if a.session.IsAuthenticated() {
		if a.session.Role() == session.RoleSuperAdmin {
			remoteErr = a.client.SuperAdminLogout(ctx)
		} else {
			remoteErr = a.client.Logout(ctx)
		}
	}
	if err := a.session.Logout(); err != nil {
		return errors.Wrap(err, "[Authenticator.Logout]")
	}
	if remoteErr != nil {
		a.client.logger.Warn().Err(remoteErr).Msg("Logout: backend logout failed, local session cleared")
		return errors.Wrap(remoteErr, "[Authenticator.Logout] backend")
	}
	return nil
}
