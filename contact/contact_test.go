package contact_test

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/networkteam/crmsuite/contact"
)

func TestEmailFor(t *testing.T) {
	assert.Equal(t, "ada.lovelace@test.com", contact.EmailFor("Ada", "Lovelace"))
	assert.Equal(t, "jean-luc.o'neil@test.com", contact.EmailFor("Jean-Luc", "O'Neil"))
}

func TestGenerate(t *testing.T) {
	c := contact.Generate(gofakeit.New(42))

	assert.NotEmpty(t, c.FirstName)
	assert.NotEmpty(t, c.LastName)
	assert.NotEmpty(t, c.Company)
	assert.NotEmpty(t, c.Phone)
	assert.Equal(t, contact.EmailFor(c.FirstName, c.LastName), c.Email)
	assert.Equal(t, c.LastName+", "+c.FirstName, c.ListName())
}

func TestGenerate_SameSeedSameContact(t *testing.T) {
	assert.Equal(t, contact.Generate(gofakeit.New(7)), contact.Generate(gofakeit.New(7)))
}

func TestEmailFor_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first := rapid.StringMatching(`[A-Za-z][A-Za-z'-]{0,15}`).Draw(t, "first")
		last := rapid.StringMatching(`[A-Za-z][A-Za-z'-]{0,15}`).Draw(t, "last")

		c := contact.New(first, last, "ACME", "555-0100")
		want := strings.ToLower(first) + "." + strings.ToLower(last) + "@test.com"
		if c.Email != want {
			t.Fatalf("expected %q, got %q", want, c.Email)
		}
		if c.Email != strings.ToLower(c.Email) {
			t.Fatalf("email %q is not lower case", c.Email)
		}
	})
}
