package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentrecords/internal/validation"
)

func TestFieldsOfStudySorted(t *testing.T) {
	fields := FieldsOfStudy()
	require.Len(t, fields, 9)
	assert.Equal(t, "Arts", fields[0])
	assert.IsNonDecreasing(t, fields)
}

func TestCoursesLookup(t *testing.T) {
	courses, ok := Courses("data science")
	require.True(t, ok)
	assert.Equal(t, []string{"Statistics", "Machine Learning", "Data Mining", "Big Data", "Neural Networks"}, courses)

	courses[0] = "mutated"
	again, _ := Courses("Data Science")
	assert.Equal(t, "Statistics", again[0])

	_, ok = Courses("Astrology")
	assert.False(t, ok)

	name, ok := CanonicalField("  LAW ")
	require.True(t, ok)
	assert.Equal(t, "Law", name)
}

// Every suggested value must pass the field validators.
func TestCatalogEntriesAreValid(t *testing.T) {
	for _, field := range FieldsOfStudy() {
		courses, _ := Courses(field)
		for _, c := range courses {
			assert.NoError(t, validation.ValidateCourse(c), c)
		}
	}
	for _, m := range Minors() {
		assert.NoError(t, validation.ValidateMinor(m), m)
	}
	for _, d := range ResearchDomains() {
		assert.NoError(t, validation.ValidateResearchDomain(d), d)
	}
	assert.Len(t, Minors(), 23)
	assert.Len(t, ResearchDomains(), 21)
}
