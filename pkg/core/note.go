package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Note is the central entity of the domain.
// It is agnostic to storage format (JSON file, SQL).
type Note struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsArchived bool      `json:"is_archived"`
}

// timestampLayouts are tried in order when decoding. The zone-less
// layouts hold local wall-clock time, as older notes files do.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders t the way it is persisted.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO-8601 form.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		loc := time.UTC
		if layout != time.RFC3339Nano {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// UnmarshalJSON decodes a note, tolerating zone-less timestamps and
// a null tag list.
func (n *Note) UnmarshalJSON(data []byte) error {
	type alias Note
	var raw struct {
		alias
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = Note(raw.alias)
	var err error
	if raw.CreatedAt != "" {
		if n.CreatedAt, err = ParseTimestamp(raw.CreatedAt); err != nil {
			return fmt.Errorf("note %d: created_at: %w", n.ID, err)
		}
	}
	if raw.UpdatedAt != "" {
		if n.UpdatedAt, err = ParseTimestamp(raw.UpdatedAt); err != nil {
			return fmt.Errorf("note %d: updated_at: %w", n.ID, err)
		}
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return nil
}

// Clone returns a deep copy so callers never alias store state.
func (n Note) Clone() Note {
	c := n
	c.Tags = append(make([]string, 0, len(n.Tags)), n.Tags...)
	return c
}

// touch moves UpdatedAt to now, keeping it strictly increasing.
func (n *Note) touch(now time.Time) {
	if !now.After(n.UpdatedAt) {
		now = n.UpdatedAt.Add(time.Microsecond)
	}
	n.UpdatedAt = now
}

// Snapshot is the unit of persistence: the whole collection plus the
// highest ID ever issued.
type Snapshot struct {
	Notes  []Note
	LastID int
}

// EventType represents the type of change in the backing store.
type EventType string

const (
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents an external change of the backing store.
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Path)
}
