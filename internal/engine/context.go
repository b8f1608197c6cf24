package engine

import (
	"maps"

	"github.com/google/uuid"

	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

// ScenarioContext is the shared state of one scenario build: the variables
// written by events and the ordered history of events that already fired.
// It is owned by a single build and is not safe for concurrent use.
type ScenarioContext struct {
	id        string
	variables map[string]any
	history   []string
	fired     map[string]struct{}
}

// NewScenarioContext creates an empty context with a fresh identifier.
func NewScenarioContext() *ScenarioContext {
	return &ScenarioContext{
		id:        uuid.NewString(),
		variables: make(map[string]any),
		fired:     make(map[string]struct{}),
	}
}

// ID returns the identifier used to correlate log lines of one build.
func (sc *ScenarioContext) ID() string {
	return sc.id
}

// Set stores value under name, replacing any previous value.
func (sc *ScenarioContext) Set(name string, value any) {
	sc.variables[name] = value
}

// Lookup returns the raw value stored under name.
func (sc *ScenarioContext) Lookup(name string) (any, bool) {
	v, ok := sc.variables[name]
	return v, ok
}

// Variables returns a copy of all variables.
func (sc *ScenarioContext) Variables() map[string]any {
	return maps.Clone(sc.variables)
}

// History returns the ids of fired events in the order they completed.
func (sc *ScenarioContext) History() []string {
	return append([]string(nil), sc.history...)
}

// HasFired reports whether the event with the given id already completed
// against this context.
func (sc *ScenarioContext) HasFired(eventID string) bool {
	_, ok := sc.fired[eventID]
	return ok
}

func (sc *ScenarioContext) record(eventID string) {
	if sc.HasFired(eventID) {
		return
	}
	sc.fired[eventID] = struct{}{}
	sc.history = append(sc.history, eventID)
}

// Get reads the variable name as a T. A variable stored as nil reads as the
// zero value of T.
func Get[T any](sc *ScenarioContext, name string) (T, error) {
	var zero T

	value, ok := sc.variables[name]
	if !ok {
		return zero, serrors.Newf(serrors.CodeMissingVariable, "a value for %s was not found in the scenario context", name)
	}
	if value == nil {
		return zero, nil
	}

	t, ok := value.(T)
	if !ok {
		return zero, serrors.Newf(serrors.CodeTypeMismatch, "the value of %s is not of the expected type: found %T but expected %T", name, value, zero)
	}
	return t, nil
}
