package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes the two token families. Access tokens are verified
// by signature and expiry alone; refresh tokens additionally have to match
// the stored slot.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrInvalidConfig = errors.New("token: invalid configuration")
	ErrInvalidToken  = errors.New("token: invalid token")
)

type Config struct {
	// Distinct keys limit blast radius: leaking one key does not allow
	// forging tokens of the other kind.
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Manager mints and verifies the access/refresh token pair. It is
// read-only after construction and safe for concurrent use.
type Manager struct {
	config Config
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, ErrInvalidConfig
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, ErrInvalidConfig
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Manager{config: cfg}, nil
}

// IssuePair mints a fresh access+refresh pair for the given subject.
// Persisting the refresh token is the caller's step; issuance alone has
// no side effects.
func (m *Manager) IssuePair(subject string) (access string, refresh string, err error) {
	access, err = m.sign(subject, KindAccess, m.config.AccessTTL, m.config.AccessSecret)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.sign(subject, KindRefresh, m.config.RefreshTTL, m.config.RefreshSecret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *Manager) sign(subject string, kind Kind, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// iat has one-second granularity, so without a jti two tokens
			// for the same subject minted in the same second would be
			// byte-identical. Rotation needs every token to be distinct.
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access token and returns its subject.
func (m *Manager) VerifyAccess(tokenStr string) (string, error) {
	return m.verify(tokenStr, KindAccess, m.config.AccessSecret)
}

// VerifyRefresh validates a refresh token's signature and expiry and
// returns its subject. Matching against the stored slot is the rotation
// engine's job, not this package's.
func (m *Manager) VerifyRefresh(tokenStr string) (string, error) {
	return m.verify(tokenStr, KindRefresh, m.config.RefreshSecret)
}

func (m *Manager) verify(tokenStr string, kind Kind, secret []byte) (string, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Kind != kind {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
