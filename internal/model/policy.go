package model

import "time"

// PolicyStatus represents the lifecycle state of a policy.
type PolicyStatus string

const (
	StatusDraft      PolicyStatus = "draft"
	StatusInProgress PolicyStatus = "in_progress"
	StatusPublished  PolicyStatus = "published"
	StatusArchived   PolicyStatus = "archived"
)

// Valid reports whether s is one of the known lifecycle states. The store
// itself does not enforce this; the CLI and HTTP layers validate before
// writing, and existing databases may carry free-form statuses.
func (s PolicyStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

// Statuses returns all known lifecycle states in order.
func Statuses() []PolicyStatus {
	return []PolicyStatus{StatusDraft, StatusInProgress, StatusPublished, StatusArchived}
}

// Policy is a unit of public-policy communications work. The id is assigned
// by the store on creation and never changes.
type Policy struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Category       string         `json:"category"`
	TargetAudience TargetAudience `json:"target_audience"`
	Description    string         `json:"description"`
	Status         PolicyStatus   `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
