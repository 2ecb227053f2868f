// Package token issues and verifies the platform's signed tokens. Access
// tokens carry the authorization snapshot for a request; refresh tokens only
// carry enough to mint a new access token; password-reset tokens are a third
// family so none of the three can stand in for another.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Type discriminates the token families issued by the platform. Every token
// embeds its type as a claim and verification demands an exact match.
type Type string

const (
	TypeAccess        Type = "access"
	TypeRefresh       Type = "refresh"
	TypePasswordReset Type = "password_reset"
)

var (
	// ErrInvalid covers malformed tokens, bad signatures and issuer or
	// audience mismatches.
	ErrInvalid = errors.New("token: invalid")
	// ErrExpired indicates the token was valid but its lifetime elapsed.
	ErrExpired = errors.New("token: expired")
	// ErrWrongType indicates a valid token presented for the wrong purpose,
	// e.g. a refresh token on an access-guarded endpoint.
	ErrWrongType = errors.New("token: unexpected type")
)

// Claims carried by platform JWTs. Refresh and reset tokens leave the
// authorization fields empty.
type Claims struct {
	UserID        string   `json:"uid"`
	Email         string   `json:"email"`
	Role          string   `json:"role,omitempty"`
	KYCStatus     string   `json:"kyc_status,omitempty"`
	Organizations []string `json:"orgs,omitempty"`
	Permissions   []string `json:"perms,omitempty"`
	SessionID     string   `json:"sid,omitempty"`
	TokenType     Type     `json:"type"`
	jwt.RegisteredClaims
}

// Config tunes the issuer. All fields are required except ResetTTL, which
// defaults to one hour.
type Config struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	clock      func() time.Time
}

// NewIssuer constructs an Issuer from config.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: secret required")
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &Issuer{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		resetTTL:   cfg.ResetTTL,
		clock:      time.Now,
	}, nil
}

// SetClock overrides the time source for tests.
func (i *Issuer) SetClock(clock func() time.Time) {
	i.clock = clock
}

// AccessTTL exposes the configured access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// AccessParams is the authorization snapshot embedded in an access token.
type AccessParams struct {
	UserID        string
	Email         string
	Role          string
	KYCStatus     string
	Organizations []string
	Permissions   []string
	SessionID     string
}

// Access mints a short-lived access token.
func (i *Issuer) Access(params AccessParams) (string, error) {
	return i.sign(Claims{
		UserID:        params.UserID,
		Email:         params.Email,
		Role:          params.Role,
		KYCStatus:     params.KYCStatus,
		Organizations: params.Organizations,
		Permissions:   params.Permissions,
		SessionID:     params.SessionID,
		TokenType:     TypeAccess,
	}, i.accessTTL)
}

// Refresh mints a long-lived refresh token with a minimal payload.
func (i *Issuer) Refresh(userID, email, sessionID string) (string, error) {
	return i.sign(Claims{
		UserID:    userID,
		Email:     email,
		SessionID: sessionID,
		TokenType: TypeRefresh,
	}, i.refreshTTL)
}

// PasswordReset mints a single-purpose reset token.
func (i *Issuer) PasswordReset(userID, email string) (string, error) {
	return i.sign(Claims{
		UserID:    userID,
		Email:     email,
		TokenType: TypePasswordReset,
	}, i.resetTTL)
}

func (i *Issuer) sign(claims Claims, ttl time.Duration) (string, error) {
	now := i.clock()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Audience:  jwt.ClaimStrings{i.audience},
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, enforcing signature, issuer,
// audience, expiry and the expected token type. Claims are returned only
// when every check passes.
func (i *Issuer) Verify(raw string, want Type) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.TokenType != want {
		return nil, ErrWrongType
	}
	return &claims, nil
}
