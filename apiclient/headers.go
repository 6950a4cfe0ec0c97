package apiclient

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	HeaderTenant    = "x-tenant"
	HeaderRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// TokenSource supplies the bearer token. *session.Session satisfies it.
type TokenSource interface {
	Token() string
}

// expiringTokenSource is a TokenSource that can also report when its token expires
type expiringTokenSource interface {
	TokenSource
	TokenExpiry() (time.Time, bool)
}

// TenantResolver supplies the active tenant. *tenant.Resolver satisfies it.
type TenantResolver interface {
	Resolve() (string, bool)
}

// HeaderBuilder composes the headers sent with every backend call. It does no I/O and
// cannot fail: a missing token or tenant only leaves the header out.
type HeaderBuilder struct {
	tokens   TokenSource
	resolver TenantResolver
}

func NewHeaderBuilder(tokens TokenSource, resolver TenantResolver) *HeaderBuilder {
	return &HeaderBuilder{tokens: tokens, resolver: resolver}
}

// BuildHeaders returns Accept and Content-Type (always, even for body-less calls),
// Authorization when a token is present, and x-tenant when tenantOverride is set or the
// resolver finds one.
func (b *HeaderBuilder) BuildHeaders(tenantOverride string) http.Header {
	h := http.Header{}
	h.Set("Accept", contentTypeJSON)
	h.Set("Content-Type", contentTypeJSON)

	if tok := b.Token(); tok != nil {
		tok.SetAuthHeader(&http.Request{Header: h})
	}
	if t, ok := b.tenant(tenantOverride); ok {
		h.Set(HeaderTenant, t)
	}
	return h
}

// Token returns the current bearer token, or nil when logged out. Expiry is filled in when
// the source knows it, so Valid reports a locally expired session.
func (b *HeaderBuilder) Token() *oauth2.Token {
	if b.tokens == nil {
		return nil
	}
	raw := strings.TrimSpace(b.tokens.Token())
	if raw == "" {
		return nil
	}
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if src, ok := b.tokens.(expiringTokenSource); ok {
		if exp, ok := src.TokenExpiry(); ok {
			tok.Expiry = exp
		}
	}
	return tok
}

func (b *HeaderBuilder) tenant(override string) (string, bool) {
	if o := strings.TrimSpace(override); o != "" {
		return o, true
	}
	if b.resolver == nil {
		return "", false
	}
	return b.resolver.Resolve()
}
