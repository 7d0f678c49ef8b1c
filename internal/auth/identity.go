package auth

// ExternalIdentity is a normalized profile returned by an OAuth provider.
// It contains facts only, no decisions; linking it to an account is the
// resolver's job.
type ExternalIdentity struct {
	Provider       string // e.g. "github", "google"
	ProviderUserID string // provider-scoped unique user identifier
	Username       string
	FullName       string
	Email          string // "" when the provider does not supply one
	AvatarURL      string // "" when the provider does not supply one
}
