package internal

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ewingjm/scenario-builder/internal/engine"
	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

type descriptorView struct {
	Kind     string      `yaml:"kind"`
	Scenario bool        `yaml:"scenario,omitempty"`
	Events   []entryView `yaml:"events"`
}

type entryView struct {
	Order int    `yaml:"order"`
	ID    string `yaml:"id"`
	Kind  string `yaml:"kind"`
	Args  []any  `yaml:"args,omitempty"`
}

func NewDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [kind]",
		Short: "Print the pipelines of the registered scenarios and composite events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRegistry()
			if err != nil {
				return err
			}

			kinds := r.Kinds()
			if len(args) == 1 {
				kinds = []engine.Kind{engine.Kind(args[0])}
			}

			var views []descriptorView
			for _, kind := range kinds {
				d, err := r.Descriptor(kind)
				if err != nil {
					// Leaf kinds have no pipeline to describe.
					if len(args) == 0 && errors.Is(err, serrors.ErrConfiguration) {
						continue
					}
					return err
				}
				views = append(views, describe(d, r.IsScenario(kind)))
			}
			return writeYAML(cmd.OutOrStdout(), views)
		},
	}
}

func describe(d *engine.Descriptor, scenario bool) descriptorView {
	view := descriptorView{Kind: string(d.Kind()), Scenario: scenario}
	for _, entry := range d.Entries() {
		view.Events = append(view.Events, entryView{
			Order: entry.Order,
			ID:    entry.EventID,
			Kind:  string(entry.Kind),
			Args:  entry.Args,
		})
	}
	return view
}
