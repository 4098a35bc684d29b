package domain

import "strings"

// ShippingAddress is the subset of address fields collected at checkout.
// All fields are required for order creation.
type ShippingAddress struct {
	FirstName  string `bson:"first_name" json:"first_name"`
	LastName   string `bson:"last_name" json:"last_name"`
	Line1      string `bson:"line1" json:"line1"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Country    string `bson:"country" json:"country"`
}

// Complete reports whether every required field is non-blank. Order creation
// must not proceed while this is false.
func (a ShippingAddress) Complete() bool {
	return len(a.MissingFields()) == 0
}

// MissingFields lists the required fields that are blank, for error messages.
func (a ShippingAddress) MissingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"line1", a.Line1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
