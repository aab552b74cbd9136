package history

import (
	"time"

	"rscapture/internal/selection"
)

// Status tracks where a recording is in its lifecycle.
type Status string

const (
	StatusRecording Status = "recording"
	StatusEncoding  Status = "encoding"
	StatusCompleted Status = "completed"
	StatusDiscarded Status = "discarded"
	StatusFailed    Status = "failed"
)

// Recording is one row of the recording history.
type Recording struct {
	ID               int64
	Region           selection.Rect
	IntermediatePath string
	FinalPath        string
	Quality          string
	Status           Status
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
