package provider

import (
	"context"
	"testing"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
)

type stubProvider struct{ name string }

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) AuthCodeURL(state, challenge string) string { return "" }

func (s stubProvider) ExchangeCode(ctx context.Context, code, verifier string) (*auth.ExternalIdentity, error) {
	return nil, nil
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(stubProvider{name: "github"}, stubProvider{name: "google"})

	p, err := reg.Get("github")
	if err != nil {
		t.Fatalf("get github: %v", err)
	}
	if p.Name() != "github" {
		t.Errorf("Name() = %q", p.Name())
	}

	if _, err := reg.Get("linkedin"); err == nil {
		t.Error("unknown provider must return an error")
	}
}
