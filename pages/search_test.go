package pages_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/networkteam/crmsuite/pages"
)

func TestArchivedNames(t *testing.T) {
	simple := []string{"Doe, Jane", "Roe, Richard"}
	advanced := []string{"Doe, Jane", "Archived, Anna", "Roe, Richard", "Gone, Gary"}

	assert.Equal(t, []string{"Archived, Anna", "Gone, Gary"}, pages.ArchivedNames(simple, advanced))
	assert.Empty(t, pages.ArchivedNames(advanced, advanced))
	assert.Empty(t, pages.ArchivedNames(nil, nil))
}

func TestArchivedNames_Properties(t *testing.T) {
	name := rapid.StringMatching(`[A-Z][a-z]{1,6}, [A-Z][a-z]{1,6}`)

	rapid.Check(t, func(t *rapid.T) {
		simple := rapid.SliceOfDistinct(name, func(s string) string { return s }).Draw(t, "simple")
		extra := rapid.SliceOfDistinct(name, func(s string) string { return s }).Draw(t, "extra")

		advanced := rapid.Permutation(append(slices.Clone(simple), extra...)).Draw(t, "advanced")

		archived := pages.ArchivedNames(simple, advanced)

		for _, a := range archived {
			if slices.Contains(simple, a) {
				t.Fatalf("%q is archived but present in simple results", a)
			}
			if !slices.Contains(advanced, a) {
				t.Fatalf("%q is archived but absent from advanced results", a)
			}
		}
		for _, a := range advanced {
			if !slices.Contains(simple, a) && !slices.Contains(archived, a) {
				t.Fatalf("%q is only in advanced results but not reported as archived", a)
			}
		}
		// Order follows the advanced results.
		want := lo.Filter(advanced, func(a string, _ int) bool { return !slices.Contains(simple, a) })
		if !slices.Equal(want, archived) {
			t.Fatalf("expected %v, got %v", want, archived)
		}
	})
}

func TestParseListName(t *testing.T) {
	first, last, err := pages.ParseListName("Lovelace, Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Lovelace", last)

	first, last, err = pages.ParseListName("  van Rossum ,  Guido ")
	require.NoError(t, err)
	assert.Equal(t, "Guido", first)
	assert.Equal(t, "van Rossum", last)

	for _, bad := range []string{"", "Ada Lovelace", "Lovelace, ", ", Ada"} {
		_, _, err := pages.ParseListName(bad)
		assert.ErrorIs(t, err, pages.ErrMalformedListName, bad)
	}
}

func TestParseListName_Properties(t *testing.T) {
	part := rapid.StringMatching(`[A-Z][a-z]{0,10}( [A-Z][a-z]{0,10})?`)

	rapid.Check(t, func(t *rapid.T) {
		first := part.Draw(t, "first")
		last := part.Draw(t, "last")

		gotFirst, gotLast, err := pages.ParseListName(fmt.Sprintf("%s, %s", last, first))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotFirst != first || gotLast != last {
			t.Fatalf("expected (%q, %q), got (%q, %q)", first, last, gotFirst, gotLast)
		}
	})
}

func TestCriteriaInputID(t *testing.T) {
	assert.Equal(t, "ctl00_content_contactCriteriaList_criteriaList_ctl00_StringTextBox", pages.CriteriaInputID(0))
	assert.Equal(t, "ctl00_content_contactCriteriaList_criteriaList_ctl01_StringTextBox", pages.CriteriaInputID(1))
}

func TestUniqueSearchName(t *testing.T) {
	a := pages.UniqueSearchName("@test")
	b := pages.UniqueSearchName("@test")

	assert.Regexp(t, `^@test-[0-9a-f]{8}$`, a)
	assert.NotEqual(t, a, b)
}

func TestAnalyticsSync_Matches(t *testing.T) {
	sync := pages.AnalyticsSync{Path: "esp.aptrinsic.com/rte/v1/command"}

	assert.True(t, sync.Matches("https://esp.aptrinsic.com/rte/v1/command?ts=1", 200))
	assert.False(t, sync.Matches("https://esp.aptrinsic.com/rte/v1/command", 500))
	assert.False(t, sync.Matches("https://crm.example.test/admin", 200))
}

func TestFramePath(t *testing.T) {
	assert.Equal(t, `iframe[name="contentarea"] >> iframe[name="UploaderIframe17569547"]`, pages.Uploader.String())

	child := pages.CriteriaDialog.Child(`iframe[name="x"]`)
	assert.Len(t, child, 2)
	assert.Len(t, pages.CriteriaDialog, 1)
	assert.Equal(t, pages.CriteriaFields[1], `iframe[name="nmReloadIFrame_AdvancedSearch_AddCriteriaDialog"]`)
}
