package domain

import "time"

// RunStatus enumerates pipeline run milestones.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunReport captures per-stage progress of one pipeline run. Counters are
// filled as stages complete, so a failed run still exposes how far it got.
type RunReport struct {
	RunID      string
	AudienceID string
	Status     RunStatus

	RawCount      int
	FilteredCount int
	DedupedCount  int
	ClusterCount  int
	IdeaCount     int

	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
}
