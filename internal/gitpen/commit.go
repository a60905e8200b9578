package gitpen

import (
	"encoding/json"
	"fmt"
	"time"
)

// MetadataFile is the reserved name of the per-commit metadata record.
// Staged content files must never use this name; it is excluded from
// file listings and drives commit listings.
const MetadataFile = "commit.json"

// commitZone is the fixed display timezone for commit dates (+05:30).
// Using a fixed offset keeps dates identical across clients regardless
// of their local timezone database.
var commitZone = time.FixedZone("IST", 5*3600+30*60)

// CommitMeta is the metadata record written alongside a commit's files.
type CommitMeta struct {
	Message string `json:"message"`
	Date    string `json:"date"`
}

// NewCommitMeta builds a metadata record with the date rendered in the
// fixed commit timezone as RFC 3339.
func NewCommitMeta(message string, now time.Time) CommitMeta {
	return CommitMeta{
		Message: message,
		Date:    now.In(commitZone).Format(time.RFC3339),
	}
}

// Marshal serializes the record as indented JSON, matching the on-disk
// and remote commit.json format.
func (m CommitMeta) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling commit metadata: %w", err)
	}
	return data, nil
}

// ParseCommitMeta decodes a commit.json payload.
func ParseCommitMeta(data []byte) (CommitMeta, error) {
	var m CommitMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return CommitMeta{}, fmt.Errorf("parsing commit metadata: %w", err)
	}
	return m, nil
}

// CommitRecord is a commit as reconstructed from the remote store.
type CommitRecord struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

// Day returns the calendar-day bucket of the commit date (YYYY-MM-DD).
// The date string is RFC 3339, so the first ten characters are the day.
func (c CommitRecord) Day() string {
	if len(c.Date) < 10 {
		return c.Date
	}
	return c.Date[:10]
}
