package auth

import "errors"

// Error kinds surfaced to the transport layer. Every operation fails
// closed: ambiguity rejects rather than allows.
var (
	// ErrValidation reports missing or malformed input fields.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound reports that the account does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrCredentials covers both an unknown user and a wrong password so
	// the response shape cannot be used for account enumeration. It also
	// covers password login against a federation-only account.
	ErrCredentials = errors.New("invalid credentials")

	// ErrConflict reports that the username or email is already taken.
	ErrConflict = errors.New("username or email already exists")

	// ErrInvalidToken reports a malformed, expired or badly signed token,
	// or a token whose subject no longer exists.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenReuse reports a refresh token with a valid signature that no
	// longer matches the stored slot. Callers should treat it as a
	// potential theft signal, not retry it.
	ErrTokenReuse = errors.New("refresh token is expired or already used")

	// ErrUpstream reports a persistence or storage collaborator failure.
	ErrUpstream = errors.New("upstream dependency failed")
)
