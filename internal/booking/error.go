package booking

import (
	"errors"
	"fmt"
)

var (
	ErrIdempotencyKey    = errors.New("idempotency key not found")
	ErrNextID            = errors.New("get next id from generator")
	ErrRecordNotFound    = errors.New("record not found")
	ErrSelectDate        = errors.New("Please select a travel date") //nolint:stylecheck
	ErrInvalidTransition = errors.New("invalid draft transition")
	ErrPaymentFailed     = errors.New("Payment failed. Please try again.") //nolint:stylecheck
	ErrUnknownStatus     = errors.New("unknown booking status")
	// ErrCheckoutInProgress means another checkout holds the same
	// idempotency key and has not finished yet.
	ErrCheckoutInProgress = errors.New("checkout with this idempotency key is in progress")
)

// PaymentError carries the draft back to the caller so it can be retried.
type PaymentError struct {
	Draft Draft
	cause error
}

func newPaymentError(d *Draft, cause error) *PaymentError {
	return &PaymentError{Draft: *d, cause: cause}
}

func IsPaymentError(err error) *PaymentError {
	if err == nil {
		return nil
	}

	var paymentError *PaymentError

	if errors.As(err, &paymentError) {
		return paymentError
	}

	return nil
}

func (e *PaymentError) Error() string {
	if e.cause == nil {
		return ErrPaymentFailed.Error()
	}

	return fmt.Sprintf("%s: %v", ErrPaymentFailed, e.cause)
}

func (e *PaymentError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrPaymentFailed}
	}

	return []error{ErrPaymentFailed, e.cause}
}

type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) fieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) addError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}
