package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jeongsedam/policy-cli/internal/planner"
)

var videoCmd = &cobra.Command{
	Use:   "video <policy-id>",
	Short: "Build video generation prompts from the latest analysis",
	Long:  "Templates the stored video brief into three style variants (documentary, cinematic, modern_dynamic), persists them as a content row, and prints or writes the prompts.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parsePolicyID(args[0])
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		analysis, err := loadLatestAnalysis(ctx, st, id)
		if err != nil {
			return err
		}

		// Templating is local; no chat client needed.
		pl := planner.New(nil, nil, st, cfg.Generate)
		prompts, err := pl.SaveVideoPrompts(ctx, id, analysis.ContentBriefs.VideoBrief)
		if err != nil {
			return err
		}

		return writeVideoPrompts(prompts, id, outDir)
	},
}

func init() {
	videoCmd.Flags().String("out", "", "directory to write prompt .txt files to")
	rootCmd.AddCommand(videoCmd)
}

func writeVideoPrompts(prompts map[string]string, policyID int64, outDir string) error {
	styles := make([]string, 0, len(prompts))
	for style := range prompts {
		styles = append(styles, style)
	}
	sort.Strings(styles)

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrap(err, "video: create output dir")
		}
		for _, style := range styles {
			path := filepath.Join(outDir, fmt.Sprintf("policy_%d_%s.txt", policyID, style))
			if err := os.WriteFile(path, []byte(prompts[style]), 0o644); err != nil {
				return eris.Wrap(err, "video: write prompt file")
			}
			fmt.Printf("Wrote %s\n", path)
		}
		return nil
	}

	for _, style := range styles {
		fmt.Printf("=== %s ===\n%s\n\n", style, prompts[style])
	}
	return nil
}
