package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/logger"
)

const (
	providerName = "github"
	userEndpoint = "https://api.github.com/user"
)

// Provider implements OAuth authentication against GitHub. GitHub is
// plain OAuth2 (no OIDC id_token), so the profile comes from the user
// API after the code exchange.
type Provider struct {
	oauthConfig *oauth2.Config
	userURL     string
}

func New(clientID, clientSecret, redirectURL string) (*Provider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     githuboauth.Endpoint,
		Scopes:       []string{"user:email"},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		userURL:     userEndpoint,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.ExternalIdentity, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("github profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github profile fetch returned status %d", resp.StatusCode)
	}

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("github profile parse failed: %w", err)
	}

	if profile.ID == 0 || profile.Login == "" {
		return nil, errors.New("github profile missing required fields")
	}

	logger.Info("github oauth verified", map[string]any{
		"login":          profile.Login,
		"email_present":  profile.Email != "",
		"avatar_present": profile.AvatarURL != "",
	})

	return &auth.ExternalIdentity{
		Provider:       providerName,
		ProviderUserID: strconv.FormatInt(profile.ID, 10),
		Username:       profile.Login,
		FullName:       profile.Name,
		Email:          profile.Email,
		AvatarURL:      profile.AvatarURL,
	}, nil
}
