package auth

import "context"

const mockAccessToken = "mock-access-token"

func mockUser() User {
	return User{
		ID:        "mock-user-id",
		Email:     "mock@example.com",
		FirstName: "Mock",
		LastName:  "User",
	}
}

// MockProvider stands in for the identity provider when it is not
// configured. Every call succeeds with a fixed identity.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// AnonymousUser is who a request without a session acts as.
func (MockProvider) AnonymousUser() User {
	return mockUser()
}

func (MockProvider) SignIn(context.Context, string, string) (*ProviderSession, error) {
	return &ProviderSession{AccessToken: mockAccessToken, User: mockUser()}, nil
}

func (MockProvider) SignUp(_ context.Context, profile Profile) (*SignUpResult, error) {
	return &SignUpResult{
		User: User{
			ID:        mockUser().ID,
			Email:     profile.Email,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
		},
	}, nil
}

func (MockProvider) SignOut(context.Context, string) error {
	return nil
}

func (MockProvider) GetUser(context.Context, string) (*User, error) {
	u := mockUser()

	return &u, nil
}

func (MockProvider) ResendVerification(context.Context, string) error {
	return nil
}
