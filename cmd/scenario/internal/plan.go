package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewingjm/scenario-builder/internal/steps"
)

func NewPlanCmd() *cobra.Command {
	var (
		eventIDs []string
		policy   string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the top-level events a run would fire, without firing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRegistry()
			if err != nil {
				return err
			}
			b, err := steps.NewIssueScenarioBuilder(r)
			if err != nil {
				return err
			}
			if err := configure(b, eventIDs, policy); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "# policy: %s\n", b.Execution())
			for _, id := range b.Plan() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&eventIDs, "configure", nil, "Mark a top-level event as configured (repeatable)")
	cmd.Flags().StringVar(&policy, "policy", "", "Execution policy: all, configured or preceding")
	return cmd
}
