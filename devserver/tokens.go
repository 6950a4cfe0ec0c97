package devserver

import (
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/martory/go-tenant-session/users"
	"github.com/pkg/errors"
)

// Signer is an interface for signing and verifying JWT tokens
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwt.Claims) (string, error)

	// GetVerificationKey returns the key used to verify token
	GetVerificationKey(token *jwt.Token) (any, error)

	// GetSigningMethod returns the JWT signing method used
	GetSigningMethod() jwt.SigningMethod
}

// HMACSigner implements Signer using symmetric HMAC-SHA256
type HMACSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: []byte(secret)}
}

func (h *HMACSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signedToken, nil
}

func (h *HMACSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}

// Claims carried by bearer tokens
type Claims struct {
	Email string         `json:"email"`
	Role  users.RoleType `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject
func (c *Claims) UserID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// TokenIssuer issues and verifies bearer tokens
type TokenIssuer struct {
	signer Signer
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(signer Signer, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{signer: signer, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user
func (ti *TokenIssuer) Issue(user *users.User) (string, error) {
	now := ti.now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	return ti.signer.Sign(claims)
}

// Verify checks the signature and expiry of raw
func (ti *TokenIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, ti.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{ti.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[TokenIssuer.Verify]")
	}
	if claims.UserID() <= 0 {
		return nil, errors.New("[TokenIssuer.Verify] token has no subject")
	}
	return claims, nil
}

// revocationList remembers logged out token ids until they expire
type revocationList struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

func newRevocationList() *revocationList {
	return &revocationList{revoked: make(map[string]time.Time)}
}

func (c *revocationList) Add(jti string, exp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
	c.cleanup()
}

func (c *revocationList) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

// cleanup removes expired entries; the caller holds the lock
func (c *revocationList) cleanup() {
	now := time.Now()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}
