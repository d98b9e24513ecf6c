package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// RecordAddItem is the only inbox record type the share command writes.
const RecordAddItem = "addItem"

// referenceDate is the epoch used by share clients that encode dates as a bare number of seconds.
var referenceDate = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// IndexEntry is the id/title projection of a playlist published for the share command.
type IndexEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// InboxRecord is a pending request queued by the share command and consumed once by the drainer.
//
// ID is optional: records from older writers carry none and are keyed by [InboxRecord.Key].
type InboxRecord struct {
	ID         string    `json:"id,omitempty"`
	Type       string    `json:"type"`
	PlaylistID string    `json:"playlistId"`
	Label      string    `json:"label"`
	URL        string    `json:"url"`
	Date       time.Time `json:"date"`
}

// Key identifies the record across drain passes.
func (r InboxRecord) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return strings.Join([]string{
		r.Type,
		strings.ToLower(r.PlaylistID),
		r.Label,
		r.URL,
		r.Date.UTC().Format(time.RFC3339Nano),
	}, "|")
}

// UnmarshalJSON accepts the date either as an ISO-8601 string or as seconds since 2001-01-01 UTC.
func (r *InboxRecord) UnmarshalJSON(data []byte) error {
	type alias InboxRecord
	var raw struct {
		alias
		Date json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = InboxRecord(raw.alias)
	date, err := parseRecordDate(raw.Date)
	if err != nil {
		return err
	}
	r.Date = date
	return nil
}

func parseRecordDate(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("inbox record date %q: %w", s, err)
		}
		return t, nil
	}

	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil {
		return time.Time{}, fmt.Errorf("inbox record date: %w", err)
	}
	whole, frac := math.Modf(secs)
	return referenceDate.Add(time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second))), nil
}
