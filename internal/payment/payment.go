package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avstrong/afrotour/internal/logger"
)

type Method string

const (
	MethodCard   Method = "card"
	MethodWallet Method = "wallet"
	MethodCash   Method = "cash"
)

func ParseMethod(value string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(value))); m {
	case MethodCard, MethodWallet, MethodCash:
		return m, nil
	case "":
		return MethodCard, nil
	default:
		return "", fmt.Errorf("payment method %q: %w", value, ErrUnknownMethod)
	}
}

type Card struct {
	Name     string `json:"name"`
	Number   string `json:"number"`
	ExpMonth string `json:"expMonth"`
	ExpYear  string `json:"expYear"`
	CVC      string `json:"cvc"`
}

type Request struct {
	Method   Method `json:"method"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Card     *Card  `json:"card,omitempty"`
}

// Validate checks presence only; card numbers are never verified.
func (r Request) Validate() error {
	if r.Method != MethodCard {
		return nil
	}

	if r.Card == nil {
		return fmt.Errorf("card: %w", ErrMissingCardDetails)
	}

	var missing []string

	for field, value := range map[string]string{
		"name":     r.Card.Name,
		"number":   r.Card.Number,
		"expMonth": r.Card.ExpMonth,
		"expYear":  r.Card.ExpYear,
		"cvc":      r.Card.CVC,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("card fields %v: %w", missing, ErrMissingCardDetails)
	}

	return nil
}

// Stub simulates an external payment authorization that always succeeds.
type Stub struct {
	l     *logger.Logger
	delay time.Duration
}

func NewStub(l *logger.Logger, delay time.Duration) *Stub {
	return &Stub{l: l, delay: delay}
}

func (s *Stub) Process(ctx context.Context, req Request) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, err
	}

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("payment of %d %s: %w", req.Amount, req.Currency, ctx.Err())
	case <-time.After(s.delay):
	}

	s.l.LogInfo("Payment authorized: method %s, amount %d %s", req.Method, req.Amount, req.Currency)

	return true, nil
}
