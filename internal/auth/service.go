package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/DELEBINITZ/user-auth-service/internal/auth/credentials"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/session"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/token"
	"github.com/DELEBINITZ/user-auth-service/internal/logger"
	"github.com/DELEBINITZ/user-auth-service/internal/storage"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

// TokenPair carries the two bearer strings handed to the caller. How they
// are delivered (cookie vs. header) is the transport layer's concern.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements the authentication and token lifecycle operations.
// It holds no mutable state of its own; the signing keys inside the token
// manager are read-only after construction.
type Service struct {
	users    user.Store
	sessions session.Store
	tokens   *token.Manager
	blobs    storage.Blobs
}

func NewService(
	users user.Store,
	sessions session.Store,
	tokens *token.Manager,
	blobs storage.Blobs,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		blobs:    blobs,
	}
}

type RegisterInput struct {
	FullName  string
	Email     string
	Username  string
	Password  string
	AvatarURL *string
}

// Register creates a password-credentialed account. The plaintext password
// is hashed before anything is written; it is never persisted.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if in.FullName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	existing, err := s.users.ByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := credentials.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	u, err := s.users.Create(ctx, user.NewUserFields{
		Username:     in.Username,
		Email:        &in.Email,
		FullName:     in.FullName,
		AvatarURL:    in.AvatarURL,
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	logger.Info("user registered", map[string]any{"user_id": u.ID})
	return u, nil
}

// Login verifies a password against the account found by username or
// email and issues a token pair. Unknown user and wrong password are
// indistinguishable in the returned error.
func (s *Service) Login(ctx context.Context, identifier, password string) (*user.User, TokenPair, error) {
	if identifier == "" || password == "" {
		return nil, TokenPair{}, fmt.Errorf("%w: username or email and password are required", ErrValidation)
	}

	u, err := s.users.ByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if u == nil || u.PasswordHash == nil {
		return nil, TokenPair{}, ErrCredentials
	}
	if err := credentials.VerifyPassword(*u.PasswordHash, password); err != nil {
		return nil, TokenPair{}, ErrCredentials
	}

	pair, err := s.issueAndPersist(ctx, u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	logger.Info("user logged in", map[string]any{"user_id": u.ID})
	return u, pair, nil
}

// LoginFederated issues a token pair for an already-resolved account,
// bypassing password verification. Used after OAuth federation.
func (s *Service) LoginFederated(ctx context.Context, userID string) (TokenPair, error) {
	return s.issueAndPersist(ctx, userID)
}

// Logout clears the refresh-token slot. The account record survives;
// only the active session is invalidated. Idempotent.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	logger.Info("user logged out", map[string]any{"user_id": userID})
	return nil
}

// Refresh validates a presented refresh token and atomically rotates it
// for a fresh pair. A token that no longer matches the stored slot is
// rejected as reuse; that includes tokens invalidated by logout or by an
// earlier rotation.
func (s *Service) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	if presented == "" {
		return TokenPair{}, fmt.Errorf("%w: refresh token is required", ErrValidation)
	}

	subject, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	u, err := s.users.ByID(ctx, subject)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if u == nil {
		// Do not leak account existence through a distinct error.
		return TokenPair{}, ErrInvalidToken
	}

	access, refresh, err := s.tokens.IssuePair(u.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	ok, err := s.sessions.Rotate(ctx, u.ID, presented, refresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !ok {
		logger.Warn("refresh token reuse detected", map[string]any{"user_id": u.ID})
		return TokenPair{}, ErrTokenReuse
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authorize validates an access token by signature and expiry alone,
// then resolves the subject to a fresh account record so downstream
// operations see current flags, not a snapshot baked into the token.
func (s *Service) Authorize(ctx context.Context, accessToken string) (*user.User, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	subject, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.users.ByID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// issueAndPersist mints a pair and stores the refresh token. Tokens are
// handed back only after the slot write succeeded.
func (s *Service) issueAndPersist(ctx context.Context, userID string) (TokenPair, error) {
	access, refresh, err := s.tokens.IssuePair(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := s.sessions.Set(ctx, userID, refresh); err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
