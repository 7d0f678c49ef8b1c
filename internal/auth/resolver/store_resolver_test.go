package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

func TestResolveCreatesFederatedAccount(t *testing.T) {
	ctx := context.Background()
	r := NewStoreResolver(user.NewMemStore())

	u, err := r.Resolve(ctx, &auth.ExternalIdentity{
		Provider:       "github",
		ProviderUserID: "42",
		Username:       "octocat",
		FullName:       "Octo Cat",
		AvatarURL:      "https://avatars.test/42",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.GithubID == nil || *u.GithubID != "42" {
		t.Error("federation id not stored")
	}
	if u.PasswordHash != nil {
		t.Error("federated account must have no password hash")
	}
	if u.Email != nil {
		t.Error("absent provider email must stay null, not defaulted")
	}
}

func TestResolveIsStable(t *testing.T) {
	ctx := context.Background()
	r := NewStoreResolver(user.NewMemStore())

	identity := &auth.ExternalIdentity{
		Provider:       "github",
		ProviderUserID: "42",
		Username:       "octocat",
		FullName:       "Octo Cat",
	}

	first, err := r.Resolve(ctx, identity)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// Second login with changed provider data must not clobber the
	// account.
	identity.FullName = "Renamed By Provider"
	second, err := r.Resolve(ctx, identity)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("resolve not stable: %s vs %s", second.ID, first.ID)
	}
	if second.FullName != "Octo Cat" {
		t.Errorf("repeat login overwrote profile: %q", second.FullName)
	}
}

func TestResolveFallsBackToUsernameForFullName(t *testing.T) {
	ctx := context.Background()
	r := NewStoreResolver(user.NewMemStore())

	u, err := r.Resolve(ctx, &auth.ExternalIdentity{
		Provider:       "github",
		ProviderUserID: "42",
		Username:       "octocat",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.FullName != "octocat" {
		t.Errorf("fullname = %q, want octocat", u.FullName)
	}
}

func TestResolveNeverMergesByEmail(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemStore()
	r := NewStoreResolver(store)

	hash := "$2a$10$existing"
	email := "ana@x.com"
	existing, err := store.Create(ctx, user.NewUserFields{
		Username:     "ana",
		Email:        &email,
		PasswordHash: &hash,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = r.Resolve(ctx, &auth.ExternalIdentity{
		Provider:       "github",
		ProviderUserID: "42",
		Username:       "ana-gh",
		Email:          "ana@x.com",
	})
	if !errors.Is(err, auth.ErrConflict) {
		t.Fatalf("email collision: got %v, want ErrConflict", err)
	}

	// The password account is untouched.
	u, err := store.ByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if u.GithubID != nil {
		t.Error("accounts were merged")
	}
}

func TestResolveRejectsIncompleteIdentity(t *testing.T) {
	r := NewStoreResolver(user.NewMemStore())

	if _, err := r.Resolve(context.Background(), nil); !errors.Is(err, auth.ErrValidation) {
		t.Errorf("nil identity: got %v, want ErrValidation", err)
	}
	if _, err := r.Resolve(context.Background(), &auth.ExternalIdentity{Username: "x"}); !errors.Is(err, auth.ErrValidation) {
		t.Errorf("missing provider id: got %v, want ErrValidation", err)
	}
}
