package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studentrecords/pkg/domain"
)

func TestValidateRecord(t *testing.T) {
	valid := domain.NewUndergraduate("", "Alice", 20, []string{"Math"}, 2, "Music")
	assert.NoError(t, ValidateRecord(valid))

	cases := []struct {
		name   string
		mutate func(*domain.Record)
		field  string
	}{
		{"short name", func(r *domain.Record) { r.Name = "A" }, FieldName},
		{"young", func(r *domain.Record) { r.Age = 15 }, FieldAge},
		{"year", func(r *domain.Record) { r.Year = 9 }, FieldYear},
		{"no courses", func(r *domain.Record) { r.Courses = nil }, FieldCourses},
		{"short course", func(r *domain.Record) { r.Courses = []string{"Math", "X"} }, FieldCourse},
		{"long minor", func(r *domain.Record) { r.Minor = string(make([]byte, 51)) }, FieldMinor},
		{"postgraduate without domain", func(r *domain.Record) { r.Kind = domain.KindPostgraduate; r.Minor = "" }, FieldResearchDomain},
		{"postgraduate too young", func(r *domain.Record) { r.Kind = domain.KindPostgraduate; r.Age = 17; r.ResearchDomain = "AI" }, FieldAge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid.Clone()
			tc.mutate(&r)
			requireField(t, ValidateRecord(r), tc.field)
		})
	}
}
