package models

import "time"

// LogEntry is an immutable audit record. Entries are only ever appended;
// nothing in the core updates or deletes them, and nothing reads them back to
// make authorization decisions.
//
// PerformedBy holds the actor's username as a plain string so the entry stays
// readable after the actor is deleted. UserID optionally references the
// subject user; it is nil for system-level events.
type LogEntry struct {
	ID          int64
	Action      string
	Timestamp   time.Time
	PerformedBy string
	UserID      *string
}
