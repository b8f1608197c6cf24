package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewingjm/scenario-builder/internal/config"
	"github.com/ewingjm/scenario-builder/internal/steps"
)

func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a harness configuration file",
		Long:  `Validate a harness configuration file, including the event ids and policy of its scenario section.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			r, err := newRegistry()
			if err != nil {
				return err
			}
			b, err := steps.NewIssueScenarioBuilder(r)
			if err != nil {
				return err
			}
			if err := configure(b, cfg.Scenario.Configure, cfg.Scenario.Policy); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Validation successful!")
			return nil
		},
	}
	cmd.Flags().String("config", "scenario.yml", "Path to the harness configuration")
	return cmd
}
