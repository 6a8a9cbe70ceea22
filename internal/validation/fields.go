// Package validation holds the stateless field checks applied to student
// records. Each check returns a *domain.ValidationError describing the first
// violated rule.
package validation

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"studentrecords/pkg/domain"
)

var validate = validator.New()

// Field names reported in ValidationError.Field.
const (
	FieldID             = "id"
	FieldName           = "name"
	FieldAge            = "age"
	FieldCourse         = "course"
	FieldCourses        = "courses"
	FieldYear           = "year"
	FieldMinor          = "minor"
	FieldResearchDomain = "research_domain"
	FieldGraduationYear = "graduation_year"
)

// Bounds shared with callers that need to describe valid ranges (e.g. CLI help).
const (
	MinAge             = 16
	MaxAge             = 100
	MinYear            = 1
	MaxYear            = 7
	GraduationYearSpan = 10
)

func check(field string, value any, tag, message string) error {
	if err := validate.Var(value, tag); err != nil {
		return &domain.ValidationError{Field: field, Message: message}
	}
	return nil
}

// ValidateID requires 5 to 10 ASCII letters or digits.
func ValidateID(id string) error {
	return check(FieldID, id, "required,alphanum,min=5,max=10", "Student ID must be alphanumeric and 5-10 characters long")
}

// ValidateName requires 2 to 50 characters.
func ValidateName(name string) error {
	return check(FieldName, name, "min=2,max=50", "Name must be between 2 and 50 characters")
}

// ValidateAge requires an age between 16 and 100 inclusive.
func ValidateAge(age int) error {
	return check(FieldAge, age, fmt.Sprintf("gte=%d,lte=%d", MinAge, MaxAge), fmt.Sprintf("Age must be between %d and %d", MinAge, MaxAge))
}

// ValidateCourse requires 2 to 50 characters.
func ValidateCourse(course string) error {
	return check(FieldCourse, course, "min=2,max=50", "Course must be between 2 and 50 characters")
}

// ValidateYear requires a year of study between 1 and 7 inclusive.
func ValidateYear(year int) error {
	return check(FieldYear, year, fmt.Sprintf("gte=%d,lte=%d", MinYear, MaxYear), fmt.Sprintf("Year must be between %d and %d", MinYear, MaxYear))
}

// ValidateMinor allows an empty minor and caps it at 50 characters.
func ValidateMinor(minor string) error {
	return check(FieldMinor, minor, "max=50", "Minor subject must not exceed 50 characters")
}

// ValidateResearchDomain requires 2 to 100 characters.
func ValidateResearchDomain(researchDomain string) error {
	return check(FieldResearchDomain, researchDomain, "min=2,max=100", "Research domain must be between 2 and 100 characters")
}

// ValidateGraduationYear accepts the year of now through ten years later.
// Kept for snapshots written by older releases; no current flow calls it.
func ValidateGraduationYear(graduationYear int, now time.Time) error {
	current := now.Year()
	last := current + GraduationYearSpan
	return check(FieldGraduationYear, graduationYear, fmt.Sprintf("gte=%d,lte=%d", current, last),
		fmt.Sprintf("Graduation year must be between %d and %d", current, last))
}
