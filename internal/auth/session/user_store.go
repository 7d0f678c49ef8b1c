package session

import (
	"context"

	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

// UserStore keeps the refresh token on the account record itself, in the
// users.refresh_token column. This is the canonical slot: clearing it is
// logout, and the row-level UPDATE gives Rotate its atomicity.
type UserStore struct {
	users user.Store
}

func NewUserStore(users user.Store) *UserStore {
	return &UserStore{users: users}
}

func (s *UserStore) Set(ctx context.Context, userID, token string) error {
	return s.users.SetRefreshToken(ctx, userID, &token)
}

func (s *UserStore) Get(ctx context.Context, userID string) (string, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil || u.RefreshToken == nil {
		return "", nil
	}
	return *u.RefreshToken, nil
}

func (s *UserStore) Rotate(ctx context.Context, userID, oldToken, newToken string) (bool, error) {
	return s.users.RotateRefreshToken(ctx, userID, oldToken, newToken)
}

func (s *UserStore) Clear(ctx context.Context, userID string) error {
	return s.users.SetRefreshToken(ctx, userID, nil)
}
