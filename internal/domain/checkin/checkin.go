package checkin

import "time"

// Checkin is a single user-submitted well-being entry. Records are
// append-only: once written they are never reordered or deleted.
type Checkin struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"ts"`
	Mood         string    `json:"mood"`
	ResponseText string    `json:"response_text"`
	Analysis     string    `json:"analysis"`
}
