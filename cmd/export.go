package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeongsedam/policy-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <policy-id>",
	Short: "Export a policy as a PDF report and/or ZIP package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parsePolicyID(args[0])
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = cfg.Export.OutputDir
		}

		wantPDF := format == "pdf" || format == "all"
		wantZIP := format == "zip" || format == "all"
		if !wantPDF && !wantZIP {
			return eris.Errorf("export: unknown format %q (pdf, zip, all)", format)
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ex := export.New(st, cfg.Export)
		pkg, err := ex.BuildPackage(ctx, id)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrap(err, "export: create output dir")
		}
		stamp := time.Now().Format("20060102_150405")

		if wantPDF {
			data, err := ex.RenderPDF(pkg)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, fmt.Sprintf("policy_%d_report_%s.pdf", id, stamp))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return eris.Wrap(err, "export: write pdf")
			}
			fmt.Printf("Wrote %s\n", path)
		}

		if wantZIP {
			data, err := ex.RenderZIP(pkg)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, fmt.Sprintf("policy_%d_package_%s.zip", id, stamp))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return eris.Wrap(err, "export: write zip")
			}
			fmt.Printf("Wrote %s\n", path)
		}

		zap.L().Info("export complete",
			zap.Int64("policy_id", id),
			zap.String("bundle_id", pkg.BundleID),
			zap.Int("images", len(pkg.Images)),
			zap.Int("video_prompt_sets", len(pkg.VideoPrompts)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "all", "export format: pdf, zip, or all")
	exportCmd.Flags().String("out", "", "output directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}
