package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"meetupsplit/domain"
)

// LoadMeetups reads a JSON array of meetup objects.
func LoadMeetups(path string) ([]domain.Meetup, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if t := bytes.TrimSpace(b); len(t) == 0 || t[0] != '[' {
		return nil, errors.New("expected a JSON array of meetups")
	}
	var meetups []domain.Meetup
	if err := json.Unmarshal(b, &meetups); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return meetups, nil
}
