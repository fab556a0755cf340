package jsonfile

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"meetupsplit/domain"
)

// WriteMeetups writes records sorted by ID, case-insensitively, records
// without an ID first. The input slice is not reordered.
func WriteMeetups(path string, meetups []domain.Meetup) error {
	return writeJSON(path, SortMeetups(meetups))
}

// WriteErrors writes the error report sorted the same way as meetups.
func WriteErrors(path string, entries []domain.ErrorEntry) error {
	return writeJSON(path, SortErrors(entries))
}

func SortMeetups(meetups []domain.Meetup) []domain.Meetup {
	out := append(make([]domain.Meetup, 0, len(meetups)), meetups...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortKey() < out[j].SortKey() })
	return out
}

func SortErrors(entries []domain.ErrorEntry) []domain.ErrorEntry {
	out := append(make([]domain.ErrorEntry, 0, len(entries)), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].MeetupID) < strings.ToLower(out[j].MeetupID)
	})
	return out
}

// writeJSON indents with two spaces and leaves non-ASCII and HTML
// characters unescaped.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
