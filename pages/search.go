package pages

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
)

// ErrMalformedListName is returned for list names not in "Last, First" form.
var ErrMalformedListName = errors.New(`list name is not in "Last, First" form`)

// CriteriaInputID returns the id of the value input of the index-th advanced
// search criterion, in the order the criteria were added.
func CriteriaInputID(index int) string {
	return fmt.Sprintf(criteriaInputIDPattern, index)
}

// ArchivedNames returns the names present in the advanced (unfiltered) results
// but absent from the simple results, which never include archived records.
// The order of advanced is kept.
func ArchivedNames(simple, advanced []string) []string {
	return lo.Without(advanced, simple...)
}

// ParseListName splits a result list name "Last, First".
func ParseListName(listName string) (firstName, lastName string, err error) {
	last, first, found := strings.Cut(listName, ", ")
	last, first = strings.TrimSpace(last), strings.TrimSpace(first)
	if !found || last == "" || first == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedListName, listName)
	}
	return first, last, nil
}

// UniqueSearchName appends a random suffix to prefix so saved searches from
// different runs do not collide.
func UniqueSearchName(prefix string) string {
	id := uuid.Must(uuid.NewV4())
	return prefix + "-" + strings.ReplaceAll(id.String(), "-", "")[:8]
}
