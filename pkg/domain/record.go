// Package domain defines the student record model, the error taxonomy, and the
// persistence contracts shared by the repository and snapshot stores.
package domain

import (
	"fmt"
	"strings"
)

// Kind discriminates the record variants stored by the system.
type Kind string

// Supported record kinds. The string values double as the persisted `type` tag.
const (
	// KindStudent is a plain student without variant-specific fields.
	KindStudent Kind = "student"
	// KindUndergraduate carries an optional minor subject.
	KindUndergraduate Kind = "undergraduate"
	// KindPostgraduate carries an optional research domain and requires age >= 18.
	KindPostgraduate Kind = "postgraduate"
)

// MinPostgraduateAge is the youngest age accepted for postgraduate records.
const MinPostgraduateAge = 18

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindStudent, KindUndergraduate, KindPostgraduate:
		return true
	default:
		return false
	}
}

// ParseKind maps a persisted or user supplied tag onto a Kind. Unknown tags
// fall back to KindStudent, mirroring how snapshots have always been read.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k.Valid() {
		return k
	}
	return KindStudent
}

// Record is a student entity. Kind selects which of the variant fields are
// meaningful: Minor for undergraduates, ResearchDomain for postgraduates.
type Record struct {
	ID             string
	Name           string
	Age            int
	Year           int
	Courses        []string
	FieldOfStudy   string
	Kind           Kind
	Minor          string
	ResearchDomain string
}

// VariantFields holds the kind-specific optional values accepted by NewRecord.
type VariantFields struct {
	Minor          string
	ResearchDomain string
}

// NewStudent constructs a plain student record.
func NewStudent(id, name string, age int, courses []string, year int) Record {
	return Record{
		ID:      id,
		Name:    name,
		Age:     age,
		Year:    year,
		Courses: NormalizeCourses(courses),
		Kind:    KindStudent,
	}
}

// NewUndergraduate constructs an undergraduate record with an optional minor.
func NewUndergraduate(id, name string, age int, courses []string, year int, minor string) Record {
	r := NewStudent(id, name, age, courses, year)
	r.Kind = KindUndergraduate
	r.Minor = minor
	return r
}

// NewPostgraduate constructs a postgraduate record. It fails when age is below
// MinPostgraduateAge.
func NewPostgraduate(id, name string, age int, courses []string, year int, researchDomain string) (Record, error) {
	if age < MinPostgraduateAge {
		return Record{}, &ValidationError{
			Field:   "age",
			Message: fmt.Sprintf("Postgraduate students must be at least %d years old", MinPostgraduateAge),
		}
	}
	r := NewStudent(id, name, age, courses, year)
	r.Kind = KindPostgraduate
	r.ResearchDomain = researchDomain
	return r, nil
}

// NewRecord dispatches on kind. Variant fields that do not apply to kind are ignored.
func NewRecord(kind Kind, id, name string, age int, courses []string, year int, extra VariantFields) (Record, error) {
	switch kind {
	case KindUndergraduate:
		return NewUndergraduate(id, name, age, courses, year, extra.Minor), nil
	case KindPostgraduate:
		return NewPostgraduate(id, name, age, courses, year, extra.ResearchDomain)
	case KindStudent:
		return NewStudent(id, name, age, courses, year), nil
	default:
		return Record{}, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown student type %q", string(kind))}
	}
}

// ParseCourses splits a comma separated course string into a normalized list.
func ParseCourses(s string) []string {
	return NormalizeCourses(strings.Split(s, ","))
}

// NormalizeCourses trims every entry and drops empty ones, preserving order.
func NormalizeCourses(courses []string) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// SetCourses replaces the course list.
func (r *Record) SetCourses(courses []string) {
	r.Courses = NormalizeCourses(courses)
}

// SetCoursesFromString replaces the course list from a comma separated string.
func (r *Record) SetCoursesFromString(s string) {
	r.Courses = ParseCourses(s)
}

// CourseList joins the courses for display and keyword search.
func (r Record) CourseList() string {
	return strings.Join(r.Courses, ", ")
}

// HasCourse reports whether course is already enrolled.
func (r Record) HasCourse(course string) bool {
	for _, c := range r.Courses {
		if c == course {
			return true
		}
	}
	return false
}

// AddCourse appends course unless it is empty or already present.
func (r *Record) AddCourse(course string) {
	course = strings.TrimSpace(course)
	if course == "" || r.HasCourse(course) {
		return
	}
	r.Courses = append(r.Courses, course)
}

// RemoveCourse drops course when present. The last remaining course is never
// removed.
func (r *Record) RemoveCourse(course string) {
	if len(r.Courses) <= 1 {
		return
	}
	for i, c := range r.Courses {
		if c == course {
			r.Courses = append(r.Courses[:i:i], r.Courses[i+1:]...)
			return
		}
	}
}

// HasMinor reports whether an undergraduate minor is set to a non-blank value.
func (r Record) HasMinor() bool {
	return strings.TrimSpace(r.Minor) != ""
}

// VariantValue returns the kind-specific field (minor or research domain).
func (r Record) VariantValue() string {
	switch r.Kind {
	case KindUndergraduate:
		return r.Minor
	case KindPostgraduate:
		return r.ResearchDomain
	default:
		return ""
	}
}

// Clone returns a deep copy safe to hand across ownership boundaries.
func (r Record) Clone() Record {
	if r.Courses != nil {
		courses := make([]string, len(r.Courses))
		copy(courses, r.Courses)
		r.Courses = courses
	}
	return r
}

// Summary renders a human readable, multi-line description of the record.
func (r Record) Summary() string {
	var b strings.Builder
	courses := "None"
	if len(r.Courses) > 0 {
		courses = r.CourseList()
	}
	fmt.Fprintf(&b, "Student ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Age: %d\n", r.Age)
	fmt.Fprintf(&b, "Courses: %s\n", courses)
	fmt.Fprintf(&b, "Year: %d\n", r.Year)
	if r.FieldOfStudy != "" {
		fmt.Fprintf(&b, "Field of Study: %s\n", r.FieldOfStudy)
	}
	switch r.Kind {
	case KindUndergraduate:
		minor := "None"
		if r.HasMinor() {
			minor = r.Minor
		}
		fmt.Fprintf(&b, "Minor Subject: %s\n", minor)
	case KindPostgraduate:
		if r.ResearchDomain != "" {
			fmt.Fprintf(&b, "Research Domain: %s\n", r.ResearchDomain)
		}
	}
	return b.String()
}
