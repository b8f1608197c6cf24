package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/ewingjm/scenario-builder/internal/ctxlog"
	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

// Scenario is embedded in every outcome type and owns the context the
// outcome was built against.
type Scenario struct {
	sc *ScenarioContext
}

// Context returns the context of the last build, or nil if the outcome was
// never built.
func (s *Scenario) Context() *ScenarioContext {
	return s.sc
}

func (s *Scenario) base() *Scenario {
	return s
}

// Outcome is the result type of a scenario. Project copies the variables the
// outcome declares onto its fields with ProjectVar.
type Outcome interface {
	base() *Scenario
	Project(p *Projector)
}

// Projector hands context variables to an outcome by name.
type Projector struct {
	variables map[string]any
	matched   map[string]struct{}
	errs      []error
}

func newProjector(variables map[string]any) *Projector {
	return &Projector{variables: variables, matched: make(map[string]struct{})}
}

// ProjectVar copies the variable name onto dst. dst keeps its value when the
// variable is not set.
func ProjectVar[T any](p *Projector, name string, dst *T) {
	value, ok := p.variables[name]
	if !ok {
		return
	}
	p.matched[name] = struct{}{}

	if value == nil {
		var zero T
		*dst = zero
		return
	}
	t, ok := value.(T)
	if !ok {
		p.errs = append(p.errs, serrors.Newf(serrors.CodeTypeMismatch, "the value of %s is a %T and cannot be projected onto a %T", name, value, *dst))
		return
	}
	*dst = t
}

func (p *Projector) unmatched() []string {
	var names []string
	for name := range p.variables {
		if _, ok := p.matched[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (p *Projector) err() error {
	return errors.Join(p.errs...)
}

// Option configures a ScenarioBuilder.
type Option func(*options)

type options struct {
	services Services
	logger   *slog.Logger
}

// WithServices sets the services constructor parameters are resolved from.
func WithServices(services Services) Option {
	return func(o *options) {
		o.services = services
	}
}

// WithLogger sets the logger used for builds. By default the logger of the
// build's context.Context is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// ScenarioBuilder builds outcomes of type T by firing the pipeline declared
// for a scenario kind. Configured events and the policy are kept across
// calls, so every Build and Extend replays the same configuration.
//
// A ScenarioBuilder must not be used by more than one goroutine at a time.
type ScenarioBuilder[T Outcome] struct {
	kind       Kind
	newOutcome func() T
	logger     *slog.Logger
	builders   *BuilderFactory
	pipeline   *pipeline
}

// NewScenarioBuilder creates a builder for the scenario kind. newOutcome
// returns an empty outcome for every Build.
func NewScenarioBuilder[T Outcome](registry *Registry, kind Kind, newOutcome func() T, opts ...Option) (*ScenarioBuilder[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if !registry.IsScenario(kind) {
		return nil, serrors.Newf(serrors.CodeConfiguration, "%s is not a registered scenario", kind)
	}
	descriptor, err := registry.Descriptor(kind)
	if err != nil {
		return nil, err
	}

	events := NewEventFactory(registry, o.services)
	return &ScenarioBuilder[T]{
		kind:       kind,
		newOutcome: newOutcome,
		logger:     o.logger,
		builders:   NewBuilderFactory(events, o.services),
		pipeline:   newPipeline(events, descriptor, "", ExecuteConfiguredAndPreceding),
	}, nil
}

// Kind returns the scenario kind.
func (b *ScenarioBuilder[T]) Kind() Kind {
	return b.kind
}

// AndAllPreviousSteps runs every event up to the last configured one.
func (b *ScenarioBuilder[T]) AndAllPreviousSteps() *ScenarioBuilder[T] {
	b.pipeline.execution = ExecuteConfiguredAndPreceding
	return b
}

// AndAllOtherSteps runs every event.
func (b *ScenarioBuilder[T]) AndAllOtherSteps() *ScenarioBuilder[T] {
	b.pipeline.execution = ExecuteAll
	return b
}

// OnlyConfiguredSteps runs only the configured events.
func (b *ScenarioBuilder[T]) OnlyConfiguredSteps() *ScenarioBuilder[T] {
	b.pipeline.execution = ExecuteConfigured
	return b
}

// SetExecution sets the policy directly.
func (b *ScenarioBuilder[T]) SetExecution(execution Execution) *ScenarioBuilder[T] {
	b.pipeline.execution = execution
	return b
}

// Execution returns the active policy.
func (b *ScenarioBuilder[T]) Execution() Execution {
	return b.pipeline.execution
}

// Plan returns the ids of the top-level events a build would fire, without
// firing them.
func (b *ScenarioBuilder[T]) Plan() []string {
	return b.pipeline.plan()
}

// Build fires the pipeline against a new context and returns the projected
// outcome.
func (b *ScenarioBuilder[T]) Build(ctx context.Context) (T, error) {
	outcome := b.newOutcome()
	s := outcome.base()
	if s.sc == nil {
		s.sc = NewScenarioContext()
	}
	return b.fire(ctx, outcome)
}

// Extend fires the pipeline against the context of existing. Events already
// in its history are skipped, so only newly selected events run.
func (b *ScenarioBuilder[T]) Extend(ctx context.Context, existing T) (T, error) {
	var zero T

	if isNil(existing) || existing.base().sc == nil {
		return zero, serrors.New(serrors.CodeInvalidState, "the scenario to extend does not own a context")
	}
	return b.fire(ctx, existing)
}

func (b *ScenarioBuilder[T]) fire(ctx context.Context, outcome T) (T, error) {
	var zero T

	sc := outcome.base().sc
	if b.logger != nil {
		ctx = ctxlog.WithLogger(ctx, b.logger)
	}
	ctx, logger := ctxlog.With(ctx, "scenario", string(b.kind), "context", sc.ID())

	logger.Debug("building scenario", "policy", b.pipeline.execution.String(), "plan", b.pipeline.plan())
	if err := b.pipeline.run(ctx, sc); err != nil {
		return zero, fmt.Errorf("building %s: %w", b.kind, err)
	}

	p := newProjector(sc.Variables())
	outcome.Project(p)
	if err := p.err(); err != nil {
		return zero, fmt.Errorf("projecting %s: %w", b.kind, err)
	}
	for _, name := range p.unmatched() {
		logger.Debug("variable has no matching field", "variable", name)
	}

	logger.Debug("scenario built", "history", sc.History())
	return outcome, nil
}

func (b *ScenarioBuilder[T]) configurable() (*pipeline, *BuilderFactory) {
	return b.pipeline, b.builders
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
