package domain

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/oklog/ulid/v2"
)

// Collection names used by the job board.
const (
	CollectionJobs         = "jobs"
	CollectionApplications = "jobApplications"
)

// Well-known document fields.
const (
	FieldID               = "_id"
	FieldApplicationCount = "applicationCount"
	FieldHREmail          = "hr_email"
	FieldTitle            = "title"
	FieldCompany          = "company"
	FieldLocation         = "location"
	FieldCompanyLogo      = "company_logo"
	FieldJobID            = "job_id"
	FieldApplicationEmail = "application_email"
	FieldStatus           = "status"
)

// Document is a schemaless record. Values are whatever encoding/json produces
// (string, json.Number or float64, bool, nil, []any, map[string]any) plus
// int/int64 for counters written by Go code.
type Document map[string]any

// NewDocumentID returns a fresh ULID document id. Lexical order of ids
// follows creation time, which stores use as their listing order.
func NewDocumentID() string {
	return ulid.Make().String()
}

// ID returns the document id, or "" when unset.
func (d Document) ID() string {
	return d.String(FieldID)
}

// String returns the string value of key. Numbers stored as json.Number are
// returned in their literal form; every other type yields "".
func (d Document) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Int returns the integer value of key. ok is false when the field is absent
// or holds a non-integral value.
func (d Document) Int(key string) (n int64, ok bool) {
	switch v := d[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Document:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// Filter is a conjunction of field equality predicates. An empty filter
// matches every document.
type Filter map[string]string

// Matches reports whether doc satisfies every predicate in f.
func (f Filter) Matches(doc Document) bool {
	for field, want := range f {
		if _, present := doc[field]; !present {
			return false
		}
		if doc.String(field) != want {
			return false
		}
	}
	return true
}
