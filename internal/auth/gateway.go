package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avstrong/afrotour/internal/logger"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type sessionStore interface {
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// anonymousIdentity is implemented by providers that resolve a fixed
// identity for requests without a session.
type anonymousIdentity interface {
	AnonymousUser() User
}

type Gateway struct {
	l        *logger.Logger
	provider IdentityProvider
	sessions sessionStore
}

func NewGateway(l *logger.Logger, provider IdentityProvider, sessions sessionStore) *Gateway {
	return &Gateway{
		l:        l,
		provider: provider,
		sessions: sessions,
	}
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	ps, err := g.provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("provider sign in: %w", err)
	}

	user := ps.User

	return g.newSession(ctx, ps.AccessToken, &user)
}

// Restore opens a session for an access token the provider issued elsewhere,
// such as an email verification link. The user is looked up lazily.
func (g *Gateway) Restore(ctx context.Context, accessToken string) (*Session, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrInvalidSession
	}

	return g.newSession(ctx, accessToken, nil)
}

func (g *Gateway) newSession(ctx context.Context, accessToken string, user *User) (*Session, error) {
	s := &Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		User:        user,
		CreatedAt:   time.Now().UTC(),
	}

	if err := g.sessions.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return s, nil
}

// SignUp returns the message to show on success.
func (g *Gateway) SignUp(ctx context.Context, profile Profile) (string, error) {
	profile.Email = strings.TrimSpace(profile.Email)
	profile.FirstName = strings.TrimSpace(profile.FirstName)
	profile.LastName = strings.TrimSpace(profile.LastName)

	if profile.Email == "" || profile.Password == "" || profile.FirstName == "" || profile.LastName == "" {
		return "", ErrFieldsRequired
	}

	if len(profile.Password) < minPasswordLen {
		return "", ErrPasswordTooShort
	}

	if !emailPattern.MatchString(profile.Email) {
		return "", ErrInvalidEmail
	}

	res, err := g.provider.SignUp(ctx, profile)
	if err != nil {
		return "", fmt.Errorf("provider sign up: %w", err)
	}

	if res.ConfirmationRequired {
		return MsgSignUpVerify, nil
	}

	return MsgSignUpReady, nil
}

// SignOut ends the session carried by ctx. Without one it does nothing.
func (g *Gateway) SignOut(ctx context.Context) error {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil
	}

	providerErr := g.provider.SignOut(ctx, s.AccessToken)
	if providerErr != nil {
		g.l.LogWarnf("Provider sign out for session %s failed: %v", s.ID, providerErr)
	}

	if err := g.sessions.DeleteSession(ctx, s.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("delete session %s: %w", s.ID, err)
	}

	if providerErr != nil {
		return fmt.Errorf("provider sign out: %w", providerErr)
	}

	return nil
}

// CurrentUser answers from the session when it already knows the user and
// asks the provider only once otherwise. Without a session only the mock
// provider resolves a user.
func (g *Gateway) CurrentUser(ctx context.Context) (*User, error) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		if p, anonymous := g.provider.(anonymousIdentity); anonymous {
			u := p.AnonymousUser()

			return &u, nil
		}

		return nil, ErrInvalidSession
	}

	if s.User != nil {
		u := *s.User

		return &u, nil
	}

	u, err := g.provider.GetUser(ctx, s.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("provider get user: %w", err)
	}

	updated := *s
	updated.User = u

	if err := g.sessions.SaveSession(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.User = u

	return u, nil
}

func (g *Gateway) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}

	if err := g.provider.ResendVerification(ctx, email); err != nil {
		return fmt.Errorf("provider resend verification: %w", err)
	}

	return nil
}

// Session loads a stored session by id.
func (g *Gateway) Session(ctx context.Context, id string) (*Session, error) {
	s, err := g.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	return s, nil
}
