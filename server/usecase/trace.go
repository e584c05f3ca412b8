package usecase

import "github.com/oklog/ulid/v2"

// NewTraceID returns a sortable id used to correlate the log lines of one
// pipeline event.
func NewTraceID() string {
	return ulid.Make().String()
}
