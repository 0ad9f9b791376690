// Package export assembles a policy's stored record, content history and
// media into downloadable artifacts: a PDF report and a ZIP package.
package export

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/jeongsedam/policy-cli/internal/config"
	"github.com/jeongsedam/policy-cli/internal/model"
	"github.com/jeongsedam/policy-cli/internal/store"
)

// ErrNotFound reports an export request for a policy id that does not
// exist. Callers distinguish it from genuine read failures with errors.Is.
var ErrNotFound = eris.New("export: policy not found")

// Package is everything gathered for one policy export.
type Package struct {
	BundleID     string
	Policy       *model.Policy
	Analysis     map[string]any   // latest analysis payload, nil if none
	VideoPrompts []map[string]any // one map per video_prompts row, newest first
	Images       []model.GeneratedMedia
}

// Plan decodes the analysis payload into its typed form. Returns nil when
// no analysis exists or the payload does not decode.
func (p *Package) Plan() *model.Analysis {
	if p.Analysis == nil {
		return nil
	}
	b, err := json.Marshal(p.Analysis)
	if err != nil {
		return nil
	}
	var a model.Analysis
	if err := json.Unmarshal(b, &a); err != nil {
		return nil
	}
	return &a
}

// Exporter reads repository data and renders output artifacts.
type Exporter struct {
	store    store.Store
	fontPath string
}

// New creates an Exporter.
func New(st store.Store, cfg config.ExportConfig) *Exporter {
	return &Exporter{store: st, fontPath: cfg.FontPath}
}

// BuildPackage gathers the policy, its newest analysis, all video-prompt
// sets and all image media.
func (e *Exporter) BuildPackage(ctx context.Context, policyID int64) (*Package, error) {
	policy, err := e.store.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, eris.Wrap(err, "export: get policy")
	}
	if policy == nil {
		return nil, eris.Wrapf(ErrNotFound, "policy %d", policyID)
	}

	contents, err := e.store.GetContents(ctx, policyID)
	if err != nil {
		return nil, eris.Wrap(err, "export: get contents")
	}

	pkg := &Package{
		BundleID: uuid.New().String(),
		Policy:   policy,
	}
	for _, c := range contents {
		switch c.ContentType {
		case model.ContentTypeAnalysis:
			// Contents arrive newest first; keep only the latest analysis.
			if pkg.Analysis == nil {
				pkg.Analysis = c.Data
			}
		case model.ContentTypeVideoPrompts:
			pkg.VideoPrompts = append(pkg.VideoPrompts, c.Data)
		}
	}

	images, err := e.store.GetMedia(ctx, policyID, model.MediaTypeImage)
	if err != nil {
		return nil, eris.Wrap(err, "export: get media")
	}
	pkg.Images = images

	return pkg, nil
}
