package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jeongsedam/policy-cli/internal/model"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage policy records",
	Long:  "Commands for creating, inspecting and listing policies and moving them through their lifecycle.",
}

// -- policy create --

var policyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new policy draft",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		title, _ := cmd.Flags().GetString("title")
		category, _ := cmd.Flags().GetString("category")
		audience, _ := cmd.Flags().GetString("audience")
		description, _ := cmd.Flags().GetString("description")

		if title == "" {
			return eris.New("policy create: --title is required")
		}
		if !model.TargetAudience(audience).Valid() {
			return eris.Errorf("policy create: unknown audience %q (known: %v)", audience, model.Audiences())
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		policy, err := st.CreatePolicy(ctx, title, category, model.TargetAudience(audience), description)
		if err != nil {
			return eris.Wrap(err, "policy create")
		}

		fmt.Printf("Created policy %d: %s\n", policy.ID, policy.Title)
		return nil
	},
}

// -- policy show --

var policyShowCmd = &cobra.Command{
	Use:   "show <policy-id>",
	Short: "Show a policy with its content and media history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parsePolicyID(args[0])
		if err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		policy, err := st.GetPolicy(ctx, id)
		if err != nil {
			return eris.Wrap(err, "policy show")
		}
		if policy == nil {
			return eris.Errorf("policy not found: %d", id)
		}

		contents, err := st.GetContents(ctx, id)
		if err != nil {
			return eris.Wrap(err, "policy show: contents")
		}
		media, err := st.GetMedia(ctx, id, "")
		if err != nil {
			return eris.Wrap(err, "policy show: media")
		}

		out := struct {
			Policy   *model.Policy         `json:"policy"`
			Contents []model.PolicyContent `json:"contents"`
			Media    []mediaSummary        `json:"media"`
		}{policy, contents, summarizeMedia(media)}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// mediaSummary elides the binary payload for terminal output.
type mediaSummary struct {
	ID        int64     `json:"id"`
	MediaType string    `json:"media_type"`
	URL       string    `json:"media_url,omitempty"`
	SizeBytes int       `json:"size_bytes"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

func summarizeMedia(media []model.GeneratedMedia) []mediaSummary {
	out := make([]mediaSummary, 0, len(media))
	for _, m := range media {
		out = append(out, mediaSummary{
			ID:        m.ID,
			MediaType: m.MediaType,
			URL:       m.URL,
			SizeBytes: len(m.Data),
			Prompt:    m.Prompt,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

// -- policy list --

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List policies, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")
		date, _ := cmd.Flags().GetString("date")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var policies []model.Policy
		switch {
		case date != "":
			day, err := time.Parse(time.DateOnly, date)
			if err != nil {
				return eris.Wrap(err, "policy list: parse --date")
			}
			policies, err = st.ListPoliciesByDate(ctx, day)
			if err != nil {
				return eris.Wrap(err, "policy list")
			}
		case from != "" || to != "":
			if from == "" || to == "" {
				return eris.New("policy list: --from and --to must be used together")
			}
			start, err := time.Parse(time.DateOnly, from)
			if err != nil {
				return eris.Wrap(err, "policy list: parse --from")
			}
			end, err := time.Parse(time.DateOnly, to)
			if err != nil {
				return eris.Wrap(err, "policy list: parse --to")
			}
			policies, err = st.ListPoliciesByDateRange(ctx, start, end)
			if err != nil {
				return eris.Wrap(err, "policy list")
			}
		default:
			policies, err = st.ListRecentPolicies(ctx, limit)
			if err != nil {
				return eris.Wrap(err, "policy list")
			}
		}

		if len(policies) == 0 {
			fmt.Fprintln(os.Stderr, "No policies found.")
			return nil
		}

		formatPolicyList(os.Stdout, policies)
		return nil
	},
}

// -- policy status --

var policyStatusCmd = &cobra.Command{
	Use:   "status <policy-id> <status>",
	Short: "Update a policy's lifecycle status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parsePolicyID(args[0])
		if err != nil {
			return err
		}
		status := args[1]
		if !model.PolicyStatus(status).Valid() {
			return eris.Errorf("policy status: unknown status %q (known: %v)", status, model.Statuses())
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.UpdatePolicyStatus(ctx, id, status); err != nil {
			return eris.Wrap(err, "policy status")
		}

		fmt.Printf("Policy %d is now %s\n", id, status)
		return nil
	},
}

func init() {
	policyCreateCmd.Flags().String("title", "", "policy title (required)")
	policyCreateCmd.Flags().String("category", "", "category path, e.g. \"환경 > 대기질 > 미세먼지 저감\"")
	policyCreateCmd.Flags().String("audience", string(model.AudienceCitizens), "target audience")
	policyCreateCmd.Flags().String("description", "", "policy description")

	policyListCmd.Flags().Int("limit", 50, "max number of policies to display")
	policyListCmd.Flags().String("date", "", "only policies created on this date (YYYY-MM-DD)")
	policyListCmd.Flags().String("from", "", "range start date (YYYY-MM-DD, inclusive)")
	policyListCmd.Flags().String("to", "", "range end date (YYYY-MM-DD, inclusive)")

	policyCmd.AddCommand(policyCreateCmd)
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyListCmd)
	policyCmd.AddCommand(policyStatusCmd)
	rootCmd.AddCommand(policyCmd)
}

// parsePolicyID parses a positional policy id argument.
func parsePolicyID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid policy id %q", arg)
	}
	return id, nil
}

// formatPolicyList writes a tabular list of policies to w.
func formatPolicyList(out io.Writer, policies []model.Policy) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tAUDIENCE\tSTATUS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-----\t--------\t--------\t------\t-------")

	for _, p := range policies {
		title := p.Title
		if len([]rune(title)) > 30 {
			title = string([]rune(title)[:27]) + "..."
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			title,
			p.Category,
			p.TargetAudience,
			p.Status,
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}
