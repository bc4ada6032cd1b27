// Package identity performs password sign-in against the identity
// collaborator. Two providers exist: a remote HTTPS sign-in endpoint
// keyed by an API key, and a local provider verifying bcrypt hashes in
// the store. Both report invalid credentials and service failure as
// distinct errors; callers must never conflate the two.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials - the username/password pair was rejected.
	// Deliberately carries no account-existence detail.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnavailable - the identity service could not be reached or
	// returned a malformed/unexpected response.
	ErrUnavailable = errors.New("identity service unavailable")
)

// Account is the identity confirmed by a successful sign-in.
type Account struct {
	Email string
}

// Provider signs a user in with email and password.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Account, error)
}
