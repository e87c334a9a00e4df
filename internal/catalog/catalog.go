package catalog

import (
	"regexp"
	"strings"
)

type Destination struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	GuideCount  int    `json:"guides"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug derives the routing key of a destination name.
func Slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}

func (d Destination) Slug() string {
	return Slug(d.Name)
}

type Catalog struct {
	destinations []Destination
	bySlug       map[string]int
}

func New(destinations []Destination) *Catalog {
	c := &Catalog{
		destinations: make([]Destination, len(destinations)),
		bySlug:       make(map[string]int, len(destinations)),
	}

	copy(c.destinations, destinations)

	for idx, d := range c.destinations {
		c.bySlug[d.Slug()] = idx
	}

	return c
}

// Default returns the catalog with the built-in destinations.
func Default() *Catalog {
	return New(destinations)
}

func (c *Catalog) All() []Destination {
	out := make([]Destination, len(c.destinations))
	copy(out, c.destinations)

	return out
}

func (c *Catalog) FindBySlug(slug string) (Destination, error) {
	idx, ok := c.bySlug[strings.ToLower(slug)]
	if !ok {
		return Destination{}, ErrDestinationNotFound
	}

	return c.destinations[idx], nil
}

// FindByName matches a destination name case-insensitively.
func (c *Catalog) FindByName(name string) (Destination, error) {
	return c.FindBySlug(Slug(strings.TrimSpace(name)))
}

var destinations = []Destination{
	{
		Name:       "Kigali",
		Country:    "Rwanda",
		GuideCount: 3,
		Image:      "/images/kigali.jpeg",
		Description: "A city of lush hills, vibrant culture, and inspiring resilience. Explore clean streets, " +
			"bustling markets, and the moving Kigali Genocide Memorial.",
	},
	{
		Name:       "Lagos",
		Country:    "Nigeria",
		GuideCount: 54,
		Image:      "/images/lagos.jpeg",
		Description: "Africa's buzzing megacity! From lively beaches to Afrobeat nightlife, Lagos is a non-stop " +
			"adventure of energy, creativity, and flavor.",
	},
	{
		Name:       "Nairobi",
		Country:    "Kenya",
		GuideCount: 34,
		Image:      "/images/nairobi.jpeg",
		Description: "Where urban life meets wild safaris. Visit the Nairobi National Park, vibrant Maasai markets, " +
			"and enjoy Kenya's famous coffee culture.",
	},
	{
		Name:       "Cape Town",
		Country:    "South Africa",
		GuideCount: 21,
		Image:      "/images/cape-town.jpeg",
		Description: "Stunning beaches, Table Mountain, and world-class vineyards make this coastal gem a must-visit " +
			"for nature and luxury lovers.",
	},
	{
		Name:       "Accra",
		Country:    "Ghana",
		GuideCount: 6,
		Image:      "/images/accra.jpeg",
		Description: "Warm hospitality meets rich history. Relax on golden beaches, explore Jamestown's street art, " +
			"and dive into Ghana's thriving music scene.",
	},
	{
		Name:       "Zanzibar",
		Country:    "Tanzania",
		GuideCount: 12,
		Image:      "/images/zanzibar.jpeg",
		Description: "A tropical paradise of spice-scented air, turquoise waters, and historic Stone Town, " +
			"perfect for beach lovers and culture seekers.",
	},
}
