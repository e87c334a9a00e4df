package auth

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Profile is the sign-up form.
type Profile struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ProviderSession is what an identity provider hands back on sign-in.
type ProviderSession struct {
	AccessToken string
	User        User
}

type SignUpResult struct {
	User User
	// ConfirmationRequired is set when the provider issued no session and
	// expects the address to be verified first.
	ConfirmationRequired bool
}
