package booking

import (
	"fmt"
	"strings"

	"github.com/avstrong/afrotour/internal/pricing"
)

type State int

const (
	StateBrowsing State = iota
	StateDrafting
	StateSubmitting
	StateConfirmed
	StateFailed
)

var stateNames = map[State]string{
	StateBrowsing:   "browsing",
	StateDrafting:   "drafting",
	StateSubmitting: "submitting",
	StateConfirmed:  "confirmed",
	StateFailed:     "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Draft is the in-flight booking of one checkout. A failed draft keeps its
// fields so that it can be submitted again.
type Draft struct {
	Destination string       `json:"destination"`
	Package     pricing.Tier `json:"package"`
	Date        string       `json:"date"`
	Travelers   int          `json:"travelers"`
	State       State        `json:"state"`
}

func NewDraft(destination string) *Draft {
	//nolint:exhaustruct
	return &Draft{Destination: destination, State: StateBrowsing}
}

func (d *Draft) Select(tier pricing.Tier, date string, travelers int) error {
	if d.State == StateSubmitting || d.State == StateConfirmed {
		return fmt.Errorf("select in %s: %w", d.State, ErrInvalidTransition)
	}

	if !tier.Valid() {
		return pricing.ErrUnknownTier
	}

	if err := pricing.ValidateTravelers(travelers); err != nil {
		return err //nolint:wrapcheck
	}

	d.Package = tier
	d.Date = strings.TrimSpace(date)
	d.Travelers = travelers
	d.State = StateDrafting

	return nil
}

// Submit moves a complete draft to Submitting. A missing date leaves the
// state untouched.
func (d *Draft) Submit() error {
	if d.Date == "" {
		return ErrSelectDate
	}

	if d.State != StateDrafting && d.State != StateFailed {
		return fmt.Errorf("submit in %s: %w", d.State, ErrInvalidTransition)
	}

	d.State = StateSubmitting

	return nil
}

func (d *Draft) Confirm() error {
	if d.State != StateSubmitting {
		return fmt.Errorf("confirm in %s: %w", d.State, ErrInvalidTransition)
	}

	d.State = StateConfirmed

	return nil
}

func (d *Draft) Fail() error {
	if d.State != StateSubmitting {
		return fmt.Errorf("fail in %s: %w", d.State, ErrInvalidTransition)
	}

	d.State = StateFailed

	return nil
}

func (d *Draft) Quote() pricing.Breakdown {
	return pricing.Calculate(d.Package, d.Travelers)
}
