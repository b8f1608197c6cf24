package internal

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewingjm/scenario-builder/internal/config"
	"github.com/ewingjm/scenario-builder/internal/ctxlog"
	"github.com/ewingjm/scenario-builder/internal/engine"
	"github.com/ewingjm/scenario-builder/internal/expect"
	"github.com/ewingjm/scenario-builder/internal/interfaces"
	"github.com/ewingjm/scenario-builder/internal/steps"
	"github.com/ewingjm/scenario-builder/internal/tracker"
)

func NewRunCmd() *cobra.Command {
	var (
		configPath   string
		eventIDs     []string
		policy       string
		expectations []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build an issue scenario and check expectations against it",
		Long: `Build an issue scenario against the configured GitHub repository and print it as YAML.
Events and the policy given on the command line are added to the ones in the config file.
Every expectation is a CEL expression over "vars" (the scenario variables) and "history" (the fired event ids).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())

			trackers, err := tracker.NewFactory(cfg.GitHub)
			if err != nil {
				return err
			}
			services := engine.NewServiceCollection()
			engine.Provide[interfaces.TrackerFactory](services, trackers)
			engine.Provide(services, cfg.Defaults)

			r, err := newRegistry()
			if err != nil {
				return err
			}
			b, err := steps.NewIssueScenarioBuilder(r, engine.WithServices(services))
			if err != nil {
				return err
			}

			if policy == "" {
				policy = cfg.Scenario.Policy
			}
			if err := configure(b, append(slices.Clone(cfg.Scenario.Configure), eventIDs...), policy); err != nil {
				return err
			}

			s, err := b.Build(ctxlog.WithLogger(cmd.Context(), logger))
			if err != nil {
				return err
			}
			if err := writeYAML(cmd.OutOrStdout(), s); err != nil {
				return err
			}

			return checkExpectations(cmd.OutOrStdout(), s.Context(), append(slices.Clone(cfg.Scenario.Expectations), expectations...))
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "scenario.yml", "Path to the harness configuration")
	cmd.Flags().StringSliceVar(&eventIDs, "configure", nil, "Mark a top-level event as configured (repeatable)")
	cmd.Flags().StringVar(&policy, "policy", "", "Execution policy: all, configured or preceding")
	cmd.Flags().StringArrayVar(&expectations, "expect", nil, "CEL expression that must hold for the built scenario (repeatable)")
	return cmd
}

func checkExpectations(w io.Writer, sc *engine.ScenarioContext, exprs []string) error {
	if len(exprs) == 0 {
		return nil
	}

	evaluator, err := expect.NewEvaluator()
	if err != nil {
		return err
	}

	var failed []string
	for _, result := range evaluator.Check(sc, exprs...) {
		switch {
		case result.Err != nil:
			fmt.Fprintf(w, "ERROR %s: %v\n", result.Expression, result.Err)
			failed = append(failed, result.Expression)
		case !result.Passed:
			fmt.Fprintf(w, "FAIL  %s\n", result.Expression)
			failed = append(failed, result.Expression)
		default:
			fmt.Fprintf(w, "PASS  %s\n", result.Expression)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d expectations failed: %s", len(failed), len(exprs), strings.Join(failed, "; "))
	}
	return nil
}
