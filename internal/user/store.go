package user

import "context"

// Store is the persistence boundary for accounts. Lookups return
// (nil, nil) when no record matches; absence is an expected outcome,
// not an error.
type Store interface {
	ByID(ctx context.Context, id string) (*User, error)
	ByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	ByGithubID(ctx context.Context, githubID string) (*User, error)
	Create(ctx context.Context, fields NewUserFields) (*User, error)
	UpdateProfile(ctx context.Context, id string, fields UpdateFields) (*User, error)
	SetAvatarURL(ctx context.Context, id string, url *string) (*User, error)
	SetPasswordHash(ctx context.Context, id string, hash string) error
	SetVisibility(ctx context.Context, id string, isPublic bool) (*User, error)

	// SetRefreshToken unconditionally overwrites the single refresh-token
	// slot. A nil token clears it (logout).
	SetRefreshToken(ctx context.Context, id string, token *string) error

	// RotateRefreshToken replaces the stored refresh token only if the
	// current value still equals old. Returns false when the slot no
	// longer matches, which includes the already-cleared case.
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) (bool, error)

	// List returns all accounts when includePrivate is set, otherwise only
	// public ones.
	List(ctx context.Context, includePrivate bool) ([]*User, error)
}
