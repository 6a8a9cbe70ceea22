// Package codec converts between domain records and the JSON snapshot format
// shared by every snapshot driver: an ordered array of objects tagged with a
// `type` discriminant.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"studentrecords/pkg/domain"
)

// ContentType is attached to snapshot blobs.
const ContentType = "application/json"

type wireRecord struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Age          int         `json:"age"`
	Courses      courseField `json:"courses"`
	Course       courseField `json:"course,omitzero"`
	Year         int         `json:"year"`
	FieldOfStudy *string     `json:"field_of_study"`
	Type         string      `json:"type"`
	Minor        *string     `json:"minor,omitempty"`
	Domain       *string     `json:"domain,omitempty"`
}

// courseField accepts either a JSON array of strings or a single comma
// separated string. Older snapshots stored courses as one string under the
// singular "course" key.
type courseField struct {
	set    bool
	values []string
}

func (c courseField) IsZero() bool { return !c.set }

func (c courseField) MarshalJSON() ([]byte, error) {
	if c.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.values)
}

func (c *courseField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		c.set = true
		c.values = domain.ParseCourses(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return fmt.Errorf("courses must be a string or an array of strings: %w", err)
	}
	c.set = true
	c.values = domain.NormalizeCourses(list)
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toWire(r domain.Record) wireRecord {
	w := wireRecord{
		ID:           r.ID,
		Name:         r.Name,
		Age:          r.Age,
		Courses:      courseField{set: true, values: r.Courses},
		Year:         r.Year,
		FieldOfStudy: optional(r.FieldOfStudy),
		Type:         string(domain.KindStudent),
	}
	switch r.Kind {
	case domain.KindUndergraduate:
		w.Type = string(domain.KindUndergraduate)
		minor := r.Minor
		w.Minor = &minor
	case domain.KindPostgraduate:
		w.Type = string(domain.KindPostgraduate)
		researchDomain := r.ResearchDomain
		w.Domain = &researchDomain
	}
	return w
}

func fromWire(w wireRecord) (domain.Record, error) {
	courses := w.Courses.values
	if !w.Courses.set {
		courses = w.Course.values
	}
	extra := domain.VariantFields{Minor: deref(w.Minor), ResearchDomain: deref(w.Domain)}
	r, err := domain.NewRecord(domain.ParseKind(w.Type), w.ID, w.Name, w.Age, courses, w.Year, extra)
	if err != nil {
		return domain.Record{}, err
	}
	r.FieldOfStudy = deref(w.FieldOfStudy)
	return r, nil
}

// Encode renders records as an indented JSON array, preserving order.
func Encode(records []domain.Record) ([]byte, error) {
	wire := make([]wireRecord, 0, len(records))
	for _, r := range records {
		wire = append(wire, toWire(r))
	}
	data, err := json.MarshalIndent(wire, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// requiredKeys must be present and non-null on every decoded record.
var requiredKeys = []string{"id", "name", "age", "year", "type"}

// Decode parses a JSON array produced by Encode or by older releases. Any
// other top-level value, including null, is rejected.
func Decode(data []byte) ([]domain.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("decode snapshot: expected a JSON array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	records := make([]domain.Record, 0, len(raw))
	for i, item := range raw {
		w, err := decodeWire(item)
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}
		r, err := fromWire(w)
		if err != nil {
			return nil, fmt.Errorf("decode record %d (%s): %w", i, w.ID, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeWire(item json.RawMessage) (wireRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return wireRecord{}, err
	}
	for _, key := range requiredKeys {
		v, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return wireRecord{}, fmt.Errorf("missing required key %q", key)
		}
	}
	var w wireRecord
	if err := json.Unmarshal(item, &w); err != nil {
		return wireRecord{}, err
	}
	return w, nil
}
