package model

import "time"

// Content type tags for policy_contents rows.
const (
	ContentTypeAnalysis     = "analysis"
	ContentTypeVideoPrompts = "video_prompts"
)

// Media type tags for generated_media rows.
const (
	MediaTypeImage = "image"
)

// PolicyContent is an append-only snapshot of generated material attached to
// a policy. Rows are never updated or deleted; the newest row of a given
// type is the current version.
type PolicyContent struct {
	ID          int64          `json:"id"`
	PolicyID    int64          `json:"policy_id"`
	ContentType string         `json:"content_type"`
	Data        map[string]any `json:"content_data"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// GeneratedMedia is a binary artifact produced for a policy. At least one of
// URL and Data should be set for a successful generation; the schema does
// not enforce this.
type GeneratedMedia struct {
	ID        int64          `json:"id"`
	PolicyID  int64          `json:"policy_id"`
	MediaType string         `json:"media_type"`
	URL       string         `json:"media_url,omitempty"`
	Data      []byte         `json:"media_data,omitempty"`
	Prompt    string         `json:"prompt"`
	Params    map[string]any `json:"generation_params,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MediaInput carries the fields for a new generated_media row.
type MediaInput struct {
	MediaType string
	URL       string
	Data      []byte
	Prompt    string
	Params    map[string]any
}

// PolicyPerformance is the metrics record for a policy. The table is created
// by the migration for forward compatibility; no operation writes it yet.
type PolicyPerformance struct {
	ID              int64          `json:"id"`
	PolicyID        int64          `json:"policy_id"`
	ViewCount       int64          `json:"view_count"`
	EngagementScore float64        `json:"engagement_score"`
	FeedbackData    string         `json:"feedback_data,omitempty"`
	MetricsData     map[string]any `json:"metrics_data,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
