package lead

import (
	"encoding/json"
	"strings"

	"github.com/hyperifyio/goleads/internal/failure"
)

// Sentinel is written in place of a failed field in every output format.
const Sentinel = "ERROR"

// Criteria describes the businesses to search for. It is immutable once
// constructed; use NewCriteria.
type Criteria struct {
	industry string
	size     string
	location string
}

// NewCriteria trims the inputs and returns a Criteria. Location may be empty.
func NewCriteria(industry, size, location string) Criteria {
	return Criteria{
		industry: strings.TrimSpace(industry),
		size:     strings.TrimSpace(size),
		location: strings.TrimSpace(location),
	}
}

// DefaultCriteria is used by the CLI for any value left empty by the user.
var DefaultCriteria = NewCriteria("cybersecurity", "50-200 employees", "San Francisco")

// WithDefaults fills empty fields from d.
func (c Criteria) WithDefaults(d Criteria) Criteria {
	out := c
	if out.industry == "" {
		out.industry = d.industry
	}
	if out.size == "" {
		out.size = d.size
	}
	if out.location == "" {
		out.location = d.location
	}
	return out
}

func (c Criteria) Industry() string { return c.industry }
func (c Criteria) Size() string     { return c.size }
func (c Criteria) Location() string { return c.location }

// MarshalJSON exposes the criteria in run manifests.
func (c Criteria) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"industry": c.industry,
		"size":     c.size,
		"location": c.location,
	})
}

// Field is the result of one enrichment step: unset, Ok(value) or
// Failed(kind). The zero value is unset.
type Field struct {
	state fieldState
	value string
	kind  failure.Kind
}

type fieldState uint8

const (
	fieldUnset fieldState = iota
	fieldOK
	fieldFailed
)

// Ok returns a successful field.
func Ok(value string) Field { return Field{state: fieldOK, value: value} }

// Failed returns a field that carries the error sentinel.
func Failed(kind failure.Kind) Field { return Field{state: fieldFailed, kind: kind} }

func (f Field) IsSet() bool    { return f.state != fieldUnset }
func (f Field) IsOK() bool     { return f.state == fieldOK }
func (f Field) IsFailed() bool { return f.state == fieldFailed }

// Value returns the successful value and whether the field is Ok.
func (f Field) Value() (string, bool) { return f.value, f.state == fieldOK }

// Kind is the failure kind of a failed field, empty otherwise.
func (f Field) Kind() failure.Kind { return f.kind }

// String renders the field for outputs: the value, the sentinel, or "".
func (f Field) String() string {
	switch f.state {
	case fieldOK:
		return f.value
	case fieldFailed:
		return Sentinel
	}
	return ""
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// Lead is a prospective customer. Name and Website are set when the lead is
// created; the enrichment fields are filled in afterwards.
type Lead struct {
	Name     string `json:"name"`
	Website  string `json:"website"`
	Insights Field  `json:"insights"`
	Score    Field  `json:"score"`
	Message  Field  `json:"message"`
}

// New returns an unenriched lead.
func New(name, website string) Lead {
	return Lead{Name: name, Website: website}
}

// Fail marks all three enrichment fields as failed with kind.
func (l *Lead) Fail(kind failure.Kind) {
	l.Insights = Failed(kind)
	l.Score = Failed(kind)
	l.Message = Failed(kind)
}

// Enriched reports whether all enrichment fields succeeded.
func (l Lead) Enriched() bool {
	return l.Insights.IsOK() && l.Score.IsOK() && l.Message.IsOK()
}
