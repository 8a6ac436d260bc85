// Package types holds the Lacs Verts data model shared by the client, the
// terminal UI and the CLI.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LakeStatus is the coarse health classification of a lake.
type LakeStatus int

const (
	StatusUnknown LakeStatus = iota
	StatusClean
	StatusToWatch
	StatusPolluted
)

// Wire values used by the backend.
const (
	wireClean    = "propre"
	wireToWatch  = "à surveiller"
	wirePolluted = "pollué"
)

// ParseLakeStatus maps a backend value (or its English name) to a LakeStatus.
func ParseLakeStatus(s string) LakeStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case wireClean, "clean":
		return StatusClean
	case wireToWatch, "a surveiller", "to-watch", "to_watch", "watch":
		return StatusToWatch
	case wirePolluted, "pollue", "polluted":
		return StatusPolluted
	default:
		return StatusUnknown
	}
}

func (s LakeStatus) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusToWatch:
		return "to-watch"
	case StatusPolluted:
		return "polluted"
	default:
		return "unknown"
	}
}

// Label is the user-facing name of the status.
func (s LakeStatus) Label() string {
	switch s {
	case StatusClean:
		return wireClean
	case StatusToWatch:
		return wireToWatch
	case StatusPolluted:
		return wirePolluted
	default:
		return "inconnu"
	}
}

// Icon returns the emoji shown next to a lake with this status.
func (s LakeStatus) Icon() string {
	switch s {
	case StatusClean:
		return "✅"
	case StatusToWatch:
		return "⚠️"
	case StatusPolluted:
		return "🚨"
	default:
		return "❓"
	}
}

// MarshalJSON encodes the status as its backend wire value.
func (s LakeStatus) MarshalJSON() ([]byte, error) {
	if s == StatusUnknown {
		return json.Marshal("")
	}
	return json.Marshal(s.Label())
}

// UnmarshalJSON accepts the backend wire values and the English names.
func (s *LakeStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("lake status: %w", err)
	}
	*s = ParseLakeStatus(raw)
	return nil
}

// Lake is a monitored water body. Read-only from the client.
type Lake struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Region      string     `json:"region"`
	Description string     `json:"description"`
	Status      LakeStatus `json:"status"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
}

// LakeNames indexes lake names by id.
func LakeNames(lakes []Lake) map[string]string {
	names := make(map[string]string, len(lakes))
	for _, l := range lakes {
		names[l.ID] = l.Name
	}
	return names
}

// Timestamp decodes the backend's ISO-8601 datetimes, which may omit the
// zone offset. Zoneless values are taken as UTC.
type Timestamp struct {
	time.Time
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range zonelessLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Display formats the timestamp the way the pages show dates.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006")
}
