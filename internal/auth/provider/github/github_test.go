package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New("", "secret", "http://cb"); err == nil {
		t.Error("missing client id must be rejected")
	}
	if _, err := New("id", "", "http://cb"); err == nil {
		t.Error("missing client secret must be rejected")
	}
	if _, err := New("id", "secret", ""); err == nil {
		t.Error("missing redirect url must be rejected")
	}
}

func TestAuthCodeURLCarriesStateAndPKCE(t *testing.T) {
	p, err := New("id", "secret", "http://cb")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	url := p.AuthCodeURL("the-state", "the-challenge")
	for _, want := range []string{"state=the-state", "code_challenge=the-challenge", "code_challenge_method=S256"} {
		if !strings.Contains(url, want) {
			t.Errorf("auth url missing %q: %s", want, url)
		}
	}
}

func TestExchangeCodeFetchesProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gh-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "gh-token") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"login":"octocat","name":"Octo Cat","email":"","avatar_url":"https://avatars.test/42"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURL:  "http://cb",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/auth",
				TokenURL: srv.URL + "/token",
			},
		},
		userURL: srv.URL + "/user",
	}

	identity, err := p.ExchangeCode(context.Background(), "the-code", "the-verifier")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if identity.ProviderUserID != "42" {
		t.Errorf("ProviderUserID = %q, want 42", identity.ProviderUserID)
	}
	if identity.Username != "octocat" {
		t.Errorf("Username = %q, want octocat", identity.Username)
	}
	if identity.Email != "" {
		t.Errorf("Email = %q, want empty (provider did not supply one)", identity.Email)
	}
	if identity.AvatarURL != "https://avatars.test/42" {
		t.Errorf("AvatarURL = %q", identity.AvatarURL)
	}
}
