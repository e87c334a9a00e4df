package auth

import "context"

// IdentityProvider is the external account service the gateway delegates to.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*ProviderSession, error)
	SignUp(ctx context.Context, profile Profile) (*SignUpResult, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)
	ResendVerification(ctx context.Context, email string) error
}
