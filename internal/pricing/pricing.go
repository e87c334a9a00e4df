package pricing

import (
	"fmt"
	"strings"
)

const (
	TicketPrice = 450

	MinTravelers = 1
	MaxTravelers = 10
)

type Tier int

const (
	Standard Tier = iota + 1
	Premium
)

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case Standard:
		return "diamond"
	case Premium:
		return "platinum"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

func (t Tier) Valid() bool {
	return t == Standard || t == Premium
}

// ParseTier accepts both the wire names and the tier names.
func ParseTier(value string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "diamond", "standard":
		return Standard, nil
	case "platinum", "premium":
		return Premium, nil
	default:
		return 0, fmt.Errorf("package %q: %w", value, ErrUnknownTier)
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrUnknownTier
	}

	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	tier, err := ParseTier(string(text))
	if err != nil {
		return err
	}

	*t = tier

	return nil
}

type Package struct {
	Tier          Tier     `json:"id"`
	Name          string   `json:"name"`
	Price         int      `json:"price"`
	Accommodation int      `json:"accommodation"`
	Duration      string   `json:"duration"`
	Features      []string `json:"features"`
	Description   string   `json:"description"`
}

var packages = map[Tier]Package{
	Standard: {
		Tier:          Standard,
		Name:          "Diamond Package",
		Price:         1200,
		Accommodation: 600,
		Duration:      "5 days",
		Features: []string{
			"5-day guided tour",
			"3-star hotel accommodation",
			"Airport transfers",
			"Daily breakfast",
			"Entry to main attractions",
		},
		Description: "Our standard package offers a comprehensive experience with comfortable accommodations " +
			"and all the essential features for an enjoyable trip.",
	},
	Premium: {
		Tier:          Premium,
		Name:          "Platinum Package",
		Price:         2200,
		Accommodation: 1200,
		Duration:      "7 days",
		Features: []string{
			"7-day guided tour",
			"5-star luxury hotel accommodation",
			"Private airport transfers",
			"All meals included",
			"VIP access to attractions",
			"Exclusive cultural experiences",
			"Personal photographer for one day",
			"Spa treatment",
		},
		Description: "Our premium package offers an elevated experience with luxury accommodations, exclusive " +
			"activities, and personalized service for the discerning traveler.",
	},
}

func PackageFor(t Tier) (Package, error) {
	p, ok := packages[t]
	if !ok {
		return Package{}, ErrUnknownTier
	}

	p.Features = append([]string(nil), p.Features...)

	return p, nil
}

// Packages lists the tiers in display order.
func Packages() []Package {
	out := make([]Package, 0, len(packages))

	for _, t := range []Tier{Standard, Premium} {
		p, _ := PackageFor(t)
		out = append(out, p)
	}

	return out
}

type Breakdown struct {
	PackageCost       int `json:"packageCost"`
	TicketCost        int `json:"ticketCost"`
	AccommodationCost int `json:"accommodationCost"`
	Total             int `json:"total"`
}

// Calculate prices a tour. Accommodation is itemized but not part of Total.
// Travelers must already be validated with ValidateTravelers.
func Calculate(t Tier, travelers int) Breakdown {
	p := packages[t]

	b := Breakdown{
		PackageCost:       p.Price,
		TicketCost:        TicketPrice * travelers,
		AccommodationCost: p.Accommodation,
	}
	b.Total = b.PackageCost + b.TicketCost

	return b
}

func ValidateTravelers(travelers int) error {
	if travelers < MinTravelers || travelers > MaxTravelers {
		return fmt.Errorf("%d travelers: %w", travelers, ErrTravelersOutOfRange)
	}

	return nil
}
