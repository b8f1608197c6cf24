package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Scenario builds issue-triage scenarios against GitHub.",
		Long: `Scenario is a test harness that sets up issue-triage scenarios on a GitHub repository.
A reporter opens an issue and a maintainer triages it. Configure the steps you care about and the harness runs whatever else they need.`,
	}

	cmd.AddCommand(NewDescribeCmd())
	cmd.AddCommand(NewPlanCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewCompletionCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
