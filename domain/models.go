package domain

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Recognized meetup record fields.
const (
	FieldID     = "meetupID"
	FieldName   = "meetupName"
	FieldRSSURL = "meetupUrlRss"
)

// Meetup is one input record. The JSON object it was read from is kept and
// re-emitted unchanged; only the recognized fields are decoded.
type Meetup struct {
	ID     string
	Name   string
	RSSURL string

	raw json.RawMessage
}

// UnmarshalJSON accepts only JSON objects.
func (m *Meetup) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil || fields == nil {
		return errors.New("meetup record must be a JSON object")
	}
	m.ID = fieldString(fields[FieldID])
	m.Name = fieldString(fields[FieldName])
	m.RSSURL = fieldString(fields[FieldRSSURL])
	m.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (m Meetup) MarshalJSON() ([]byte, error) {
	if m.raw == nil {
		return []byte("{}"), nil
	}
	return m.raw, nil
}

// Label is what progress lines and error entries use to name the record.
func (m Meetup) Label(row int) string {
	if m.ID != "" {
		return m.ID
	}
	if m.Name != "" {
		return m.Name
	}
	return "row-" + strconv.Itoa(row)
}

// SortKey orders records case-insensitively by ID, records without one first.
func (m Meetup) SortKey() string { return strings.ToLower(m.ID) }

// fieldString returns string values verbatim and the literal text of numbers
// and booleans. Null, objects and arrays yield "".
func fieldString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	switch v[0] {
	case '{', '[', 'n', 'f':
		return ""
	}
	return string(v)
}

// ErrorEntry is one line of the error report.
type ErrorEntry struct {
	MeetupID     string `json:"meetupID"`
	MeetupURLRSS string `json:"meetupUrlRss,omitempty"`
	Error        string `json:"error"`
}

type Outcome int

const (
	Pending Outcome = iota
	Matched
	Unmatched
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Unmatched:
		return "unmatched"
	case Errored:
		return "errored"
	default:
		return "pending"
	}
}

// Match is what the classifier reports for one feed. Seen and Parsed are
// diagnostic only.
type Match struct {
	Matched bool
	Seen    int
	Parsed  int
}

// Tally is the running count printed after every record.
type Tally struct {
	Processed int
	Total     int
	Matched   int
	NoMatch   int
	Errors    int
}
