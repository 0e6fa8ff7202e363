package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"regnify/internal/domain"
)

// RulesCmd lists the jurisdiction format rules.
func RulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List jurisdiction format rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesFile, _ := cmd.Flags().GetString("rules")
			only, _ := cmd.Flags().GetString("jurisdiction")

			_, registry, err := newEngine(rulesFile, time.Now)
			if err != nil {
				return err
			}

			jurisdictions := registry.Jurisdictions()
			if only != "" {
				j := domain.Jurisdiction(strings.ToUpper(only))
				if !j.IsValid() {
					return domain.ErrInvalidJurisdiction
				}
				jurisdictions = []domain.Jurisdiction{j}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "JURISDICTION\tKEY\tPENALTY\tMESSAGE\tEXPRESSION")
			for _, j := range jurisdictions {
				for _, spec := range registry.Specs(j) {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", j, spec.Key, spec.Penalty, spec.Message, spec.Expression)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("rules", "", "JSON file with additional format rules")
	cmd.Flags().String("jurisdiction", "", "only list rules for this jurisdiction")
	return cmd
}
