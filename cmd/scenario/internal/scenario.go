package internal

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ewingjm/scenario-builder/internal/engine"
	"github.com/ewingjm/scenario-builder/internal/steps"
)

func newRegistry() (*engine.Registry, error) {
	r := engine.NewRegistry()
	if err := steps.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// configure marks the given top-level events as configured and applies
// policy when it is not empty.
func configure(b *steps.IssueScenarioBuilder, eventIDs []string, policy string) error {
	if err := b.ConfigureDefaults(eventIDs...).Err(); err != nil {
		return err
	}
	if policy == "" {
		return nil
	}
	execution, err := engine.ParseExecution(policy)
	if err != nil {
		return err
	}
	b.SetExecution(execution)
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
