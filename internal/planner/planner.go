// Package planner orchestrates plan generation: it sequences the language
// model and image generation calls and persists their results. The model
// response is parsed here; the store only ever sees fully-formed payloads.
package planner

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jeongsedam/policy-cli/internal/config"
	"github.com/jeongsedam/policy-cli/internal/model"
	"github.com/jeongsedam/policy-cli/internal/store"
)

// contentSchemaVersion tags persisted analysis payloads so their shape can
// evolve without breaking older readers.
const contentSchemaVersion = "1"

// retryTemperature is used for the single reformulation attempt after a
// parse failure. Lower than the first attempt to push the model toward
// strict JSON.
const retryTemperature = 0.3

// ChatClient produces a completion for a system/user prompt pair.
type ChatClient interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
	Name() string
}

// ImageGenerator renders one image for a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, size, quality string) ([]byte, error)
}

// Planner drives the generation workflow for a policy.
type Planner struct {
	chat   ChatClient
	images ImageGenerator
	store  store.Store
	cfg    config.GenerateConfig
}

// New creates a Planner. The image generator may be nil when only analysis
// is needed.
func New(chat ChatClient, images ImageGenerator, st store.Store, cfg config.GenerateConfig) *Planner {
	return &Planner{chat: chat, images: images, store: st, cfg: cfg}
}

// Analyze asks the model for a structured plan and persists it as an
// analysis content row. Malformed model output triggers exactly one
// reformulation re-ask; a second failure is final.
func (p *Planner) Analyze(ctx context.Context, policy *model.Policy, keywords, constraints string) (*model.Analysis, error) {
	req := model.AnalysisRequest{
		Title:          policy.Title,
		Category:       policy.Category,
		TargetAudience: policy.TargetAudience,
		Description:    policy.Description,
		Keywords:       keywords,
		Constraints:    constraints,
	}

	raw, err := p.chat.Complete(ctx, analysisSystemPrompt, buildAnalysisPrompt(req), p.cfg.Temperature)
	if err != nil {
		return nil, eris.Wrap(err, "planner: analysis request")
	}

	attempt := 1
	analysis, parseErr := parseAnalysis(raw)
	if parseErr != nil {
		zap.L().Warn("planner: analysis response did not parse, re-asking once",
			zap.Int64("policy_id", policy.ID),
			zap.Error(parseErr),
		)

		raw, err = p.chat.Complete(ctx, retrySystemPrompt, buildRetryPrompt(raw), retryTemperature)
		if err != nil {
			return nil, eris.Wrap(err, "planner: analysis retry request")
		}
		attempt = 2
		analysis, parseErr = parseAnalysis(raw)
		if parseErr != nil {
			return nil, eris.Wrap(parseErr, "planner: analysis unparseable after retry")
		}
	}

	metadata := map[string]any{
		"schema_version": contentSchemaVersion,
		"provider":       p.chat.Name(),
		"attempt":        attempt,
	}
	if _, err := p.store.SaveContent(ctx, policy.ID, model.ContentTypeAnalysis, analysis, metadata); err != nil {
		return nil, eris.Wrap(err, "planner: save analysis")
	}

	zap.L().Info("analysis complete",
		zap.Int64("policy_id", policy.ID),
		zap.Int("attempt", attempt),
	)
	return analysis, nil
}

// GenerateImage renders one image from a brief and persists the media row.
func (p *Planner) GenerateImage(ctx context.Context, policyID int64, brief model.ImageBrief) (*model.GeneratedMedia, error) {
	if p.images == nil {
		return nil, eris.New("planner: no image generator configured")
	}

	prompt := BuildImagePrompt(brief, p.cfg.ImageStyle)
	data, err := p.images.Generate(ctx, prompt, p.cfg.ImageSize, p.cfg.ImageQuality)
	if err != nil {
		return nil, eris.Wrap(err, "planner: generate image")
	}

	media, err := p.store.SaveMedia(ctx, policyID, model.MediaInput{
		MediaType: model.MediaTypeImage,
		Data:      data,
		Prompt:    prompt,
		Params: map[string]any{
			"size":    p.cfg.ImageSize,
			"quality": p.cfg.ImageQuality,
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "planner: save image")
	}

	zap.L().Info("image generated",
		zap.Int64("policy_id", policyID),
		zap.Int("bytes", len(data)),
	)
	return media, nil
}

// SaveVideoPrompts templates the three video-prompt styles from the brief
// and persists them as a video_prompts content row.
func (p *Planner) SaveVideoPrompts(ctx context.Context, policyID int64, brief model.VideoBrief) (map[string]string, error) {
	prompts := VideoPrompts(brief)

	payload := make(map[string]any, len(prompts))
	for style, text := range prompts {
		payload[style] = text
	}
	metadata := map[string]any{"schema_version": contentSchemaVersion}
	if _, err := p.store.SaveContent(ctx, policyID, model.ContentTypeVideoPrompts, payload, metadata); err != nil {
		return nil, eris.Wrap(err, "planner: save video prompts")
	}

	return prompts, nil
}

// parseAnalysis decodes a model response into an Analysis, tolerating
// markdown fences and surrounding prose.
func parseAnalysis(raw string) (*model.Analysis, error) {
	cleaned := cleanJSON(raw)
	var analysis model.Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, eris.Wrap(err, "planner: parse analysis JSON")
	}
	return &analysis, nil
}
