package catalog

import "strings"

const (
	guidePhone = "+123 456 7890"
	guideEmail = "guide@afrotournexus.com"

	fallbackGuide = "Local Guide"
)

type Guide struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Checked in order; the first destination contained in the input wins.
var guides = []struct {
	destination string
	name        string
}{
	{"Kigali", "John Mutabazi"},
	{"Lagos", "Chioma Okafor"},
	{"Nairobi", "David Kamau"},
	{"Cape Town", "Sarah Nkosi"},
	{"Accra", "Kwame Mensah"},
	{"Zanzibar", "Fatima Hassan"},
}

// GuideFor assigns the tour guide for a destination name.
func GuideFor(destination string) Guide {
	name := fallbackGuide

	for _, g := range guides {
		if strings.Contains(destination, g.destination) {
			name = g.name

			break
		}
	}

	return Guide{
		Name:  name,
		Phone: guidePhone,
		Email: guideEmail,
	}
}
