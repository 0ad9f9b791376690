package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeongsedam/policy-cli/internal/model"
	"github.com/jeongsedam/policy-cli/internal/store"
)

var imageCmd = &cobra.Command{
	Use:   "image <policy-id>",
	Short: "Generate promotional images from the latest analysis",
	Long:  "Renders one image per brief in the stored analysis (both briefs by default) and persists the results. Use --out to also write PNG files.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parsePolicyID(args[0])
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")
		briefNum, _ := cmd.Flags().GetInt("brief")

		pl, st, err := initPlanner(ctx, true)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		analysis, err := loadLatestAnalysis(ctx, st, id)
		if err != nil {
			return err
		}

		briefs := map[int]model.ImageBrief{
			1: analysis.ContentBriefs.ImageBrief1,
			2: analysis.ContentBriefs.ImageBrief2,
		}
		if briefNum != 0 {
			brief, ok := briefs[briefNum]
			if !ok {
				return eris.Errorf("image: no such brief: %d", briefNum)
			}
			briefs = map[int]model.ImageBrief{briefNum: brief}
		}

		// Briefs render concurrently; the client's rate limiter spaces the
		// upstream calls.
		g, gctx := errgroup.WithContext(ctx)
		var mu sync.Mutex
		results := make(map[int]*model.GeneratedMedia, len(briefs))
		for num, brief := range briefs {
			g.Go(func() error {
				media, err := pl.GenerateImage(gctx, id, brief)
				if err != nil {
					return eris.Wrapf(err, "image: brief %d", num)
				}
				mu.Lock()
				results[num] = media
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for num, media := range results {
			fmt.Printf("Brief %d: media row %d (%d bytes)\n", num, media.ID, len(media.Data))
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return eris.Wrap(err, "image: create output dir")
				}
				path := filepath.Join(outDir, fmt.Sprintf("policy_%d_brief_%d.png", id, num))
				if err := os.WriteFile(path, media.Data, 0o644); err != nil {
					return eris.Wrap(err, "image: write file")
				}
				zap.L().Info("image written", zap.String("path", path))
			}
		}
		return nil
	},
}

func init() {
	imageCmd.Flags().String("out", "", "directory to write PNG files to")
	imageCmd.Flags().Int("brief", 0, "render only this brief (1 or 2)")
	rootCmd.AddCommand(imageCmd)
}

// loadLatestAnalysis fetches the newest analysis content row for a policy
// and decodes it into its typed form.
func loadLatestAnalysis(ctx context.Context, st store.Store, policyID int64) (*model.Analysis, error) {
	policy, err := st.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, eris.Wrap(err, "load analysis: get policy")
	}
	if policy == nil {
		return nil, eris.Errorf("policy not found: %d", policyID)
	}

	contents, err := st.GetContents(ctx, policyID)
	if err != nil {
		return nil, eris.Wrap(err, "load analysis: get contents")
	}
	for _, c := range contents {
		if c.ContentType != model.ContentTypeAnalysis {
			continue
		}
		b, err := json.Marshal(c.Data)
		if err != nil {
			return nil, eris.Wrap(err, "load analysis: re-encode payload")
		}
		var analysis model.Analysis
		if err := json.Unmarshal(b, &analysis); err != nil {
			return nil, eris.Wrap(err, "load analysis: decode payload")
		}
		return &analysis, nil
	}
	return nil, eris.Errorf("no analysis stored for policy %d; run analyze first", policyID)
}
