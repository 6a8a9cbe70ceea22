// Package catalog holds the reference lists offered when registering a
// student: fields of study with their courses, minor subjects, and research
// domains.
package catalog

import (
	"slices"
	"strings"
)

var fieldCourses = map[string][]string{
	"Software Engineering":   {"Programming", "Data Structures", "Algorithms", "Software Design", "Web Development"},
	"Data Science":           {"Statistics", "Machine Learning", "Data Mining", "Big Data", "Neural Networks"},
	"Civil Engineering":      {"Mechanics", "Structures", "Materials", "Hydraulics", "Surveying"},
	"Mechanical Engineering": {"Thermodynamics", "Fluid Dynamics", "Machine Design", "Control Systems", "Manufacturing"},
	"Business":               {"Accounting", "Marketing", "Finance", "Management", "Economics", "Business Ethics"},
	"Arts":                   {"Fine Arts", "Music", "Theater", "Literature", "Philosophy", "History"},
	"Sciences":               {"Physics", "Chemistry", "Biology", "Mathematics", "Astronomy", "Geology"},
	"Medicine":               {"Anatomy", "Physiology", "Pathology", "Pharmacology", "Microbiology", "Immunology"},
	"Law":                    {"Constitutional Law", "Criminal Law", "Civil Law", "International Law", "Corporate Law", "Human Rights Law"},
}

var minors = []string{
	"Mathematics", "Business", "Electronics", "Psychology", "Communication",
	"Business Management", "Computer Science", "Renewable Energy", "Physics",
	"Foreign Language", "Law", "Data Analytics", "Digital Media", "Education",
	"Environmental Studies", "Public Health", "Ethics", "Nutrition", "Management",
	"International Relations", "Political Science", "Economics", "Philosophy",
}

var researchDomains = []string{
	"Artificial Intelligence", "Machine Learning", "Computer Vision",
	"Natural Language Processing", "Cybersecurity", "Networks",
	"Human-Computer Interaction", "Robotics", "Materials Science",
	"Structural Engineering", "Energy Systems", "Control Systems",
	"Biomedical Engineering", "Nanotechnology", "Finance", "Marketing Analytics",
	"Operations Management", "Leadership", "Business Analytics",
	"Entrepreneurship", "Supply Chain Management",
}

// FieldsOfStudy returns the known fields sorted alphabetically.
func FieldsOfStudy() []string {
	out := make([]string, 0, len(fieldCourses))
	for f := range fieldCourses {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Courses returns the course options for field, matched case-insensitively.
func Courses(field string) ([]string, bool) {
	for f, courses := range fieldCourses {
		if strings.EqualFold(f, strings.TrimSpace(field)) {
			return slices.Clone(courses), true
		}
	}
	return nil, false
}

// CanonicalField returns the catalog spelling of field.
func CanonicalField(field string) (string, bool) {
	for f := range fieldCourses {
		if strings.EqualFold(f, strings.TrimSpace(field)) {
			return f, true
		}
	}
	return "", false
}

// Minors returns the suggested minor subjects in display order.
func Minors() []string { return slices.Clone(minors) }

// ResearchDomains returns the suggested research domains in display order.
func ResearchDomains() []string { return slices.Clone(researchDomains) }
