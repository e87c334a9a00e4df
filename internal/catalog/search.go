package catalog

import "strings"

// Search returns the destinations whose name, country or description contains
// query, ignoring case. A blank query matches nothing.
func (c *Catalog) Search(query string) []Destination {
	if strings.TrimSpace(query) == "" {
		return []Destination{}
	}

	q := strings.ToLower(query)
	result := make([]Destination, 0)

	for _, d := range c.destinations {
		if strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Country), q) ||
			strings.Contains(strings.ToLower(d.Description), q) {
			result = append(result, d)
		}
	}

	return result
}
