// Package expect evaluates CEL expectations against a built scenario.
//
// Expressions see two variables: vars, the scenario context variables keyed
// by name, and history, the ids of the fired events in order. Variable values
// are converted to plain maps and lists through their YAML form, so struct
// fields are addressed by their yaml tags:
//
//	vars.IssueOpened.number > 0 && "IssueTriage_Labelling" in history
package expect

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"gopkg.in/yaml.v3"

	"github.com/ewingjm/scenario-builder/internal/engine"
)

// Evaluator compiles and evaluates expectations. It is safe for concurrent
// use.
type Evaluator struct {
	env          *cel.Env
	costLimit    uint64
	programCache sync.Map
}

// Result is the outcome of one expectation.
type Result struct {
	Expression string
	Passed     bool
	Err        error
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("vars", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("history", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{
		env:       env,
		costLimit: 1000000,
	}, nil
}

// Evaluate reports whether expr holds for the given variables and history.
func (e *Evaluator) Evaluate(expr string, vars map[string]any, history []string) (bool, error) {
	program, err := e.program(expr)
	if err != nil {
		return false, err
	}

	normalized, err := Normalize(vars)
	if err != nil {
		return false, err
	}
	if history == nil {
		history = []string{}
	}

	result, _, err := program.Eval(map[string]any{
		"vars":    normalized,
		"history": history,
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}
	if result.Type() != types.BoolType {
		return false, fmt.Errorf("CEL expression must return boolean, got %v", result.Type())
	}
	return result.Value().(bool), nil
}

// Check evaluates every expression against the context of a built scenario.
func (e *Evaluator) Check(sc *engine.ScenarioContext, exprs ...string) []Result {
	vars := sc.Variables()
	history := sc.History()

	results := make([]Result, 0, len(exprs))
	for _, expr := range exprs {
		passed, err := e.Evaluate(expr, vars, history)
		results = append(results, Result{Expression: expr, Passed: passed, Err: err})
	}
	return results
}

// Compile checks that expr parses and only references vars and history.
// The compiled program is cached for later evaluations.
func (e *Evaluator) Compile(expr string) error {
	_, err := e.program(expr)
	return err
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	if cached, found := e.programCache.Load(expr); found {
		return cached.(cel.Program), nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}
	program, err := e.env.Program(ast, cel.CostLimit(e.costLimit))
	if err != nil {
		return nil, fmt.Errorf("CEL program creation error: %w", err)
	}

	actual, _ := e.programCache.LoadOrStore(expr, program)
	return actual.(cel.Program), nil
}

// Normalize converts variable values to the maps, lists and scalars they
// encode to in YAML.
func Normalize(vars map[string]any) (map[string]any, error) {
	data, err := yaml.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("could not encode scenario variables: %w", err)
	}

	normalized := make(map[string]any)
	if err := yaml.Unmarshal(data, &normalized); err != nil {
		return nil, fmt.Errorf("could not decode scenario variables: %w", err)
	}
	return normalized, nil
}
