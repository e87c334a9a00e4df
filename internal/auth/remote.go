package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteProvider talks to a GoTrue compatible REST endpoint.
type RemoteProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type RemoteConf struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

func NewRemoteProvider(conf RemoteConf) *RemoteProvider {
	client := conf.Client
	if client == nil {
		timeout := conf.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second //nolint:gomnd
		}

		//nolint:exhaustruct
		client = &http.Client{Timeout: timeout}
	}

	return &RemoteProvider{
		baseURL: strings.TrimRight(conf.URL, "/"),
		apiKey:  conf.APIKey,
		client:  client,
	}
}

type remoteUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user_metadata"`
}

func (u remoteUser) toUser() User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.UserMetadata.FirstName,
		LastName:  u.UserMetadata.LastName,
	}
}

type remoteSession struct {
	AccessToken string      `json:"access_token"`
	User        *remoteUser `json:"user"`
}

// signUpResponse covers both shapes: a session when no confirmation is
// needed, a bare user otherwise.
type signUpResponse struct {
	remoteUser
	AccessToken string      `json:"access_token"`
	User        *remoteUser `json:"user"`
}

type remoteError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (*ProviderSession, error) {
	var out remoteSession

	body := map[string]string{"email": email, "password": password}
	if err := p.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &out); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if out.User == nil || out.AccessToken == "" {
		return nil, fmt.Errorf("sign in: %w", ErrInvalidCredentials)
	}

	return &ProviderSession{AccessToken: out.AccessToken, User: out.User.toUser()}, nil
}

func (p *RemoteProvider) SignUp(ctx context.Context, profile Profile) (*SignUpResult, error) {
	var out signUpResponse

	body := map[string]any{
		"email":    profile.Email,
		"password": profile.Password,
		"data": map[string]string{
			"first_name": profile.FirstName,
			"last_name":  profile.LastName,
		},
	}

	if err := p.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &out); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	if out.User != nil {
		return &SignUpResult{User: out.User.toUser(), ConfirmationRequired: out.AccessToken == ""}, nil
	}

	if out.ID == "" {
		return nil, fmt.Errorf("sign up returned no user: %w", ErrProvider)
	}

	return &SignUpResult{User: out.remoteUser.toUser(), ConfirmationRequired: true}, nil
}

func (p *RemoteProvider) SignOut(ctx context.Context, accessToken string) error {
	if err := p.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	return nil
}

func (p *RemoteProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var out remoteUser

	if err := p.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &out); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u := out.toUser()

	return &u, nil
}

func (p *RemoteProvider) ResendVerification(ctx context.Context, email string) error {
	body := map[string]string{"type": "signup", "email": email}
	if err := p.do(ctx, http.MethodPost, "/auth/v1/resend", "", body, nil); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}

	return nil
}

func (p *RemoteProvider) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var reader io.Reader

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	bearer := p.apiKey
	if accessToken != "" {
		bearer = accessToken
	}

	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return classify(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func classify(status int, raw []byte) error {
	var re remoteError

	_ = json.Unmarshal(raw, &re)

	text := strings.ToLower(strings.Join([]string{re.Error, re.ErrorDescription, re.Msg, re.Message}, " "))

	switch {
	case re.ErrorCode == "email_not_confirmed" || strings.Contains(text, "email not confirmed"):
		return ErrEmailNotConfirmed
	case re.ErrorCode == "user_already_exists" || strings.Contains(text, "already registered"):
		return ErrAlreadyRegistered
	case re.ErrorCode == "invalid_credentials" || re.Error == "invalid_grant" ||
		strings.Contains(text, "invalid login credentials"):
		return ErrInvalidCredentials
	case status == http.StatusUnauthorized:
		return ErrInvalidSession
	default:
		return fmt.Errorf("status %d: %s: %w", status, strings.TrimSpace(text), ErrProvider)
	}
}
