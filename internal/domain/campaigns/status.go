package campaigns

import "time"

type Status string

const (
	StatusInactive  Status = "inactive"
	StatusInvalid   Status = "invalid"
	StatusScheduled Status = "scheduled"
	StatusEnded     Status = "ended"
	StatusRunning   Status = "running"
)

// ResolveStatus derives the lifecycle state of a campaign at now.
// A zero timestamp stands for one that could not be parsed.
func ResolveStatus(now, startsAt, endsAt time.Time, enabled bool) Status {
	if !enabled {
		return StatusInactive
	}
	if startsAt.IsZero() || endsAt.IsZero() {
		return StatusInvalid
	}
	if now.Before(startsAt) {
		return StatusScheduled
	}
	if now.After(endsAt) {
		return StatusEnded
	}
	return StatusRunning
}
