package identity

import (
	"MailTrack-Backend/internal/auth"
	"MailTrack-Backend/internal/repository"
	"context"
	"errors"

	"go.uber.org/zap"
)

// LocalProvider verifies credentials against bcrypt hashes in the
// store. Used in development and tests, where no remote identity
// endpoint is reachable.
type LocalProvider struct {
	storage         repository.Storage
	passwordService *auth.PasswordService
	log             *zap.Logger
}

// NewLocalProvider creates a store-backed sign-in provider.
func NewLocalProvider(storage repository.Storage, passwordService *auth.PasswordService, log *zap.Logger) *LocalProvider {
	return &LocalProvider{
		storage:         storage,
		passwordService: passwordService,
		log:             log,
	}
}

// SignIn verifies the password hash of the stored user. An unknown
// user and a wrong password are indistinguishable to the caller.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Account, error) {
	user, err := p.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		p.log.Error("failed to look up user for sign-in", zap.Error(err))
		return nil, ErrUnavailable
	}

	if user.PasswordHash == nil {
		// Remote-provisioned account with no local hash.
		return nil, ErrInvalidCredentials
	}

	if err := p.passwordService.VerifyPassword(*user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Account{Email: user.Email}, nil
}
