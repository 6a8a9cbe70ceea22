package validation

import "studentrecords/pkg/domain"

// ValidateRecord checks every user supplied field of r, stopping at the first
// violation. The id is not checked here; it is either generated or validated
// by the facade on admission.
func ValidateRecord(r domain.Record) error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateAge(r.Age); err != nil {
		return err
	}
	if err := ValidateYear(r.Year); err != nil {
		return err
	}
	if len(r.Courses) == 0 {
		return &domain.ValidationError{Field: FieldCourses, Message: "At least one course is required"}
	}
	for _, c := range r.Courses {
		if err := ValidateCourse(c); err != nil {
			return err
		}
	}
	switch r.Kind {
	case domain.KindUndergraduate:
		return ValidateMinor(r.Minor)
	case domain.KindPostgraduate:
		if r.Age < domain.MinPostgraduateAge {
			return &domain.ValidationError{Field: FieldAge, Message: "Postgraduate students must be at least 18 years old"}
		}
		return ValidateResearchDomain(r.ResearchDomain)
	}
	return nil
}
