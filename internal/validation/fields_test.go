package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentrecords/pkg/domain"
)

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected *domain.ValidationError, got %T", err)
	assert.Equal(t, field, ve.Field)
	assert.NotEmpty(t, ve.Message)
}

func TestValidateID(t *testing.T) {
	for _, ok := range []string{"ABC12", "abc12XYZ90", "12345"} {
		assert.NoError(t, ValidateID(ok), ok)
	}
	for _, bad := range []string{"", "AB12", "ABCDEFGHIJK", "ABC-12", "ABC 12", "ÄBC12"} {
		requireField(t, ValidateID(bad), FieldID)
	}
}

func TestValidateAgeBoundaries(t *testing.T) {
	assert.NoError(t, ValidateAge(16))
	assert.NoError(t, ValidateAge(100))
	requireField(t, ValidateAge(15), FieldAge)
	requireField(t, ValidateAge(101), FieldAge)
	assert.EqualError(t, ValidateAge(15), "Age must be between 16 and 100")
}

func TestValidateYear(t *testing.T) {
	assert.NoError(t, ValidateYear(1))
	assert.NoError(t, ValidateYear(7))
	requireField(t, ValidateYear(0), FieldYear)
	requireField(t, ValidateYear(8), FieldYear)
}

func TestValidateLengths(t *testing.T) {
	cases := []struct {
		name  string
		fn    func(string) error
		field string
		ok    []string
		bad   []string
	}{
		{"name", ValidateName, FieldName, []string{"Al", strings.Repeat("a", 50)}, []string{"", "A", strings.Repeat("a", 51)}},
		{"course", ValidateCourse, FieldCourse, []string{"AI", strings.Repeat("c", 50)}, []string{"C", strings.Repeat("c", 51)}},
		{"minor", ValidateMinor, FieldMinor, []string{"", "Music", strings.Repeat("m", 50)}, []string{strings.Repeat("m", 51)}},
		{"research domain", ValidateResearchDomain, FieldResearchDomain, []string{"AI", strings.Repeat("d", 100)}, []string{"", "D", strings.Repeat("d", 101)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, v := range tc.ok {
				assert.NoError(t, tc.fn(v), "len %d", len(v))
			}
			for _, v := range tc.bad {
				requireField(t, tc.fn(v), tc.field)
			}
		})
	}
}

func TestValidateNameCountsCharactersNotBytes(t *testing.T) {
	assert.NoError(t, ValidateName(strings.Repeat("é", 50)))
}

func TestValidateGraduationYear(t *testing.T) {
	now := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateGraduationYear(2026, now))
	assert.NoError(t, ValidateGraduationYear(2036, now))
	requireField(t, ValidateGraduationYear(2025, now), FieldGraduationYear)
	assert.EqualError(t, ValidateGraduationYear(2037, now), "Graduation year must be between 2026 and 2036")
}
