package user

import "time"

// User is the stored account record. An account is created either with a
// password credential or with a federation identifier (GithubID); it must
// always carry at least one of the two.
type User struct {
	ID           string
	Username     string
	Email        *string
	FullName     string
	Phone        string
	Bio          string
	AvatarURL    *string
	PasswordHash *string
	GithubID     *string
	RefreshToken *string // single slot; nil means no active session
	IsPublic     bool
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUserFields carries the attributes needed to create an account.
// PasswordHash and GithubID are both optional but at least one must be set.
type NewUserFields struct {
	Username     string
	Email        *string
	FullName     string
	AvatarURL    *string
	PasswordHash *string
	GithubID     *string
}

// UpdateFields is a partial profile update. Nil fields are left untouched.
type UpdateFields struct {
	FullName *string
	Email    *string
	Phone    *string
	Bio      *string
}
