package auth

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/DELEBINITZ/user-auth-service/internal/auth/credentials"
	"github.com/DELEBINITZ/user-auth-service/internal/logger"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

// ChangePassword verifies the current password and replaces the stored
// hash. The old hash is discarded, not retained.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password are required", ErrValidation)
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if u == nil {
		return ErrNotFound
	}
	if u.PasswordHash == nil {
		return ErrCredentials
	}
	if err := credentials.VerifyPassword(*u.PasswordHash, current); err != nil {
		return ErrCredentials
	}

	hash, err := credentials.HashPassword(next)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.users.SetPasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	logger.Info("password changed", map[string]any{"user_id": userID})
	return nil
}

type ProfileUpdate struct {
	FullName *string
	Email    *string
	Phone    *string
	Bio      *string
}

func (p ProfileUpdate) empty() bool {
	return p.FullName == nil && p.Email == nil && p.Phone == nil && p.Bio == nil
}

// UpdateProfile applies a partial profile update. At least one field must
// be provided.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*user.User, error) {
	if upd.empty() {
		return nil, fmt.Errorf("%w: at least one field is required", ErrValidation)
	}

	u, err := s.users.UpdateProfile(ctx, userID, user.UpdateFields{
		FullName: upd.FullName,
		Email:    upd.Email,
		Phone:    upd.Phone,
		Bio:      upd.Bio,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// StoreAvatarBlob writes an avatar blob for an account that does not
// exist yet (registration path) and returns its URL.
func (s *Service) StoreAvatarBlob(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if fileName == "" || r == nil {
		return "", fmt.Errorf("%w: avatar file is required", ErrValidation)
	}
	url, err := s.blobs.Store(ctx, fileName, r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return url, nil
}

// UpdateAvatar stores the new blob, points the account at it and deletes
// the previous blob best-effort.
func (s *Service) UpdateAvatar(ctx context.Context, userID, fileName string, r io.Reader) (*user.User, error) {
	if fileName == "" || r == nil {
		return nil, fmt.Errorf("%w: avatar file is required", ErrValidation)
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if u == nil {
		return nil, ErrNotFound
	}

	url, err := s.blobs.Store(ctx, fileName, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	updated, err := s.users.SetAvatarURL(ctx, userID, &url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if u.AvatarURL != nil {
		if err := s.blobs.Delete(ctx, *u.AvatarURL); err != nil {
			logger.Warn("failed to delete old avatar", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return updated, nil
}

// ToggleVisibility flips the public flag.
func (s *Service) ToggleVisibility(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if u == nil {
		return nil, ErrNotFound
	}

	updated, err := s.users.SetVisibility(ctx, userID, !u.IsPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return updated, nil
}

// ListUsers returns every account for admins and public accounts for
// everyone else.
func (s *Service) ListUsers(ctx context.Context, requester *user.User) ([]*user.User, error) {
	users, err := s.users.List(ctx, requester != nil && requester.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return users, nil
}
