package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <policy-id>",
	Short: "Generate the full execution and communication plan for a policy",
	Long:  "Asks the configured language model for a structured plan covering planning, execution, communication strategy, content briefs, marketing materials, KPIs and stakeholder management, then stores the result.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parsePolicyID(args[0])
		if err != nil {
			return err
		}
		keywords, _ := cmd.Flags().GetString("keywords")
		constraints, _ := cmd.Flags().GetString("constraints")

		pl, st, err := initPlanner(ctx, false)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		policy, err := st.GetPolicy(ctx, id)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}
		if policy == nil {
			return eris.Errorf("policy not found: %d", id)
		}

		analysis, err := pl.Analyze(ctx, policy, keywords, constraints)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

func init() {
	analyzeCmd.Flags().String("keywords", "", "extra keywords to steer the plan")
	analyzeCmd.Flags().String("constraints", "", "constraints the plan must respect (budget, timeline, ...)")
	rootCmd.AddCommand(analyzeCmd)
}
