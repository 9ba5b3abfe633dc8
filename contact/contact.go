// Package contact generates synthetic contact records for scenarios.
//
// Derived fields are computed from the generated name so a record can be
// found again later by searching for it.
package contact

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// EmailDomain is the domain of every generated email address. Scenarios search
// for "@test" to find records created by the suite.
const EmailDomain = "test.com"

// Contact is a generated contact record.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	Phone     string
}

// ListName is the name as the console shows it in result lists ("Last, First").
func (c Contact) ListName() string {
	return c.LastName + ", " + c.FirstName
}

// EmailFor derives the email address for a name.
func EmailFor(firstName, lastName string) string {
	return strings.ToLower(firstName + "." + lastName + "@" + EmailDomain)
}

// New builds a contact with the email derived from the name.
func New(firstName, lastName, company, phone string) Contact {
	return Contact{
		FirstName: firstName,
		LastName:  lastName,
		Email:     EmailFor(firstName, lastName),
		Company:   company,
		Phone:     phone,
	}
}

// Generate draws a new random contact from f.
func Generate(f *gofakeit.Faker) Contact {
	return New(f.FirstName(), f.LastName(), f.Company(), f.Phone())
}
