package engine

import (
	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

// Execution selects which events of a pipeline run.
type Execution int

const (
	// ExecuteAll runs every declared event.
	ExecuteAll Execution = iota
	// ExecuteConfigured runs only the configured events.
	ExecuteConfigured
	// ExecuteConfiguredAndPreceding runs every event up to and including the
	// last configured one.
	ExecuteConfiguredAndPreceding
)

func (e Execution) String() string {
	switch e {
	case ExecuteAll:
		return "all"
	case ExecuteConfigured:
		return "configured"
	case ExecuteConfiguredAndPreceding:
		return "preceding"
	default:
		return "unknown"
	}
}

// ParseExecution parses the names returned by Execution.String.
func ParseExecution(s string) (Execution, error) {
	switch s {
	case "all":
		return ExecuteAll, nil
	case "configured":
		return ExecuteConfigured, nil
	case "preceding":
		return ExecuteConfiguredAndPreceding, nil
	default:
		return ExecuteAll, serrors.Newf(serrors.CodeConfiguration, "unknown execution policy %q: must be one of all, configured, preceding", s)
	}
}

// Select returns the ids that run under execution, preserving the order of
// ids. Under ExecuteConfiguredAndPreceding the result is empty when none of
// ids is configured.
func Select(ids []string, execution Execution, configured func(string) bool) []string {
	switch execution {
	case ExecuteConfigured:
		var selected []string
		for _, id := range ids {
			if configured(id) {
				selected = append(selected, id)
			}
		}
		return selected
	case ExecuteConfiguredAndPreceding:
		last := -1
		for i, id := range ids {
			if configured(id) {
				last = i
			}
		}
		return append([]string(nil), ids[:last+1]...)
	default:
		return append([]string(nil), ids...)
	}
}
