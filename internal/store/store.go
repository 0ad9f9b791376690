package store

import (
	"context"
	"time"

	"github.com/jeongsedam/policy-cli/internal/model"
)

// Store defines the persistence interface for policies and their generated
// content. Policies are the aggregate root; contents and media are
// append-only children. Implementations return explicit nil values for
// by-id misses and never log; presentation belongs to the caller.
type Store interface {
	// Policies
	CreatePolicy(ctx context.Context, title, category string, audience model.TargetAudience, description string) (*model.Policy, error)
	// UpdatePolicyStatus overwrites the status column and refreshes
	// updated_at. The status string is not validated here so existing
	// free-form values stay writable; callers validate with
	// model.PolicyStatus.Valid. Returns a not-found error when id does
	// not exist.
	UpdatePolicyStatus(ctx context.Context, id int64, status string) error
	// GetPolicy returns (nil, nil) when the id does not exist.
	GetPolicy(ctx context.Context, id int64) (*model.Policy, error)
	ListRecentPolicies(ctx context.Context, limit int) ([]model.Policy, error)
	// ListPoliciesByDate matches on the calendar date of created_at,
	// ignoring time of day.
	ListPoliciesByDate(ctx context.Context, day time.Time) ([]model.Policy, error)
	// ListPoliciesByDateRange is inclusive on both bounds. A reversed
	// range (start after end) returns an empty slice.
	ListPoliciesByDateRange(ctx context.Context, start, end time.Time) ([]model.Policy, error)

	// Contents (append-only)
	SaveContent(ctx context.Context, policyID int64, contentType string, payload any, metadata map[string]any) (*model.PolicyContent, error)
	// GetContents returns all rows for the policy newest first. Rows
	// whose stored JSON no longer parses are skipped rather than
	// aborting the listing.
	GetContents(ctx context.Context, policyID int64) ([]model.PolicyContent, error)

	// Media (append-only)
	SaveMedia(ctx context.Context, policyID int64, in model.MediaInput) (*model.GeneratedMedia, error)
	// GetMedia returns all rows for the policy newest first, optionally
	// filtered to a single media type. An empty mediaType matches all.
	GetMedia(ctx context.Context, policyID int64, mediaType string) ([]model.GeneratedMedia, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// defaultListLimit bounds ListRecentPolicies when the caller passes a
// non-positive limit.
const defaultListLimit = 50
