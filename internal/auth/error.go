package auth

import "errors"

var (
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("email already registered")
	ErrInvalidSession     = errors.New("invalid session")
	ErrProvider           = errors.New("identity provider error")

	ErrFieldsRequired   = errors.New("all fields are required")
	ErrPasswordTooShort = errors.New("password too short")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrEmailRequired    = errors.New("email required")

	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidToken    = errors.New("invalid token")
)
