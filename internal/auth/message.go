package auth

import "errors"

const (
	MsgSignUpVerify     = "Registration successful! Please check your email to verify your account."
	MsgSignUpReady      = "Registration successful! You can now log in to your account."
	MsgVerificationSent = "Confirmation email resent. Please check your inbox."
	MsgGeneric          = "An error occurred. Please try again."
)

var messages = []struct {
	err error
	msg string
}{
	{ErrEmailNotConfirmed, "Please verify your email before logging in. Check your inbox for a confirmation link."},
	{ErrInvalidCredentials, "Invalid email or password"},
	{ErrAlreadyRegistered, "This email is already registered. Please log in instead."},
	{ErrFieldsRequired, "All fields are required"},
	{ErrPasswordTooShort, "Password must be at least 6 characters long"},
	{ErrInvalidEmail, "Please enter a valid email address"},
	{ErrEmailRequired, "Email address is required"},
}

// Message maps a gateway error to the text shown to the user.
func Message(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}

	return MsgGeneric
}
