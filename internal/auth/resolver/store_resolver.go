package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

// StoreResolver links external identities to accounts through the user
// store.
type StoreResolver struct {
	users user.Store
}

func NewStoreResolver(users user.Store) *StoreResolver {
	return &StoreResolver{users: users}
}

// Resolve returns the account already linked to the federation id, or
// creates one seeded from the provider profile. A repeat login never
// overwrites profile fields: provider data is applied at creation only.
//
// Accounts are never merged by email. If the provider-supplied email
// already belongs to a password account, the collision surfaces as
// ErrConflict and the two accounts stay distinct.
func (r *StoreResolver) Resolve(ctx context.Context, identity *auth.ExternalIdentity) (*user.User, error) {
	if identity == nil || identity.ProviderUserID == "" {
		return nil, fmt.Errorf("%w: external identity is incomplete", auth.ErrValidation)
	}

	existing, err := r.users.ByGithubID(ctx, identity.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrUpstream, err)
	}
	if existing != nil {
		return existing, nil
	}

	fields := user.NewUserFields{
		Username: identity.Username,
		GithubID: &identity.ProviderUserID,
	}
	fields.FullName = identity.FullName
	if fields.FullName == "" {
		fields.FullName = identity.Username
	}
	if identity.Email != "" {
		fields.Email = &identity.Email
	}
	if identity.AvatarURL != "" {
		fields.AvatarURL = &identity.AvatarURL
	}

	created, err := r.users.Create(ctx, fields)
	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return nil, auth.ErrConflict
		}
		return nil, fmt.Errorf("%w: %v", auth.ErrUpstream, err)
	}
	return created, nil
}
