package resolver

import (
	"context"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

// Resolver determines which account an external identity belongs to.
// It is the only place where identity-to-account mapping logic lives.
type Resolver interface {
	Resolve(ctx context.Context, identity *auth.ExternalIdentity) (*user.User, error)
}
