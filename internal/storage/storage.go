package storage

import "time"

// Exchange is one completed request/response round trip. Exchanges are
// an audit transcript only: they are appended in chronological order and
// never read back into conversational history.
type Exchange struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
}

// Recorder abstracts persistence of exchanges. Implementations can be
// file-based, database, etc. Append must be safe for concurrent use.
type Recorder interface {
	Append(ex Exchange) error
}
