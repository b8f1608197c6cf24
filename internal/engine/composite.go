package engine

import (
	"context"
	"fmt"
	"maps"

	"github.com/ewingjm/scenario-builder/internal/ctxlog"
	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

// pipeline is the configured state shared by composite events, composite
// builders and scenario builders: which children were configured, which
// policy selects the runnable ones, and the events built so far.
type pipeline struct {
	descriptor *Descriptor
	factory    *EventFactory

	// prefix is prepended to child ids. It is empty at the scenario root.
	prefix string

	// A nil builder configures the child with its defaults.
	configured  map[string]EventBuilder
	execution   Execution
	onConfigure Execution
	cache       map[string]Event
}

func newPipeline(factory *EventFactory, descriptor *Descriptor, prefix string, onConfigure Execution) *pipeline {
	return &pipeline{
		descriptor:  descriptor,
		factory:     factory,
		prefix:      prefix,
		configured:  make(map[string]EventBuilder),
		execution:   ExecuteAll,
		onConfigure: onConfigure,
		cache:       make(map[string]Event),
	}
}

func (p *pipeline) childID(id string) string {
	if p.prefix == "" {
		return id
	}
	return p.prefix + "_" + id
}

func (p *pipeline) entry(id string) (Composition, error) {
	e, ok := p.descriptor.Entry(id)
	if !ok {
		return Composition{}, serrors.Newf(serrors.CodeConfiguration, "%s does not declare an event with id %q", p.descriptor.Kind(), id)
	}
	return e, nil
}

// set records b as the override of id without changing the policy.
func (p *pipeline) set(id string, b EventBuilder) error {
	if _, err := p.entry(id); err != nil {
		return err
	}
	p.configured[id] = b
	delete(p.cache, id)
	return nil
}

func (p *pipeline) isConfigured(id string) bool {
	_, ok := p.configured[id]
	return ok
}

func (p *pipeline) plan() []string {
	return Select(p.descriptor.EventIDs(), p.execution, p.isConfigured)
}

func (p *pipeline) event(id string) (Event, error) {
	if ev, ok := p.cache[id]; ok {
		return ev, nil
	}

	var (
		ev  Event
		err error
	)
	if b := p.configured[id]; b != nil {
		ev, err = b.Build()
	} else {
		var e Composition
		if e, err = p.entry(id); err == nil {
			ev, err = p.factory.CreateEvent(e.Kind, p.childID(id), e.Args)
		}
	}
	if err != nil {
		return nil, err
	}

	p.cache[id] = ev
	return ev, nil
}

func (p *pipeline) run(ctx context.Context, sc *ScenarioContext) error {
	for _, id := range p.plan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := p.event(id)
		if err != nil {
			return fmt.Errorf("resolving event %q of %s: %w", id, p.descriptor.Kind(), err)
		}
		if err := Fire(ctx, sc, ev); err != nil {
			return err
		}
	}
	return nil
}

// CompositeEvent runs the pipeline declared for its kind. Composite event
// types embed *CompositeEvent and construct it with NewCompositeEvent.
type CompositeEvent struct {
	id       string
	pipeline *pipeline
}

// NewCompositeEvent creates the composite part of an event of kind. Children
// built from defaults get the id "<id>_<child id>".
func NewCompositeEvent(factory *EventFactory, kind Kind, id string) (*CompositeEvent, error) {
	descriptor, err := factory.Registry().Descriptor(kind)
	if err != nil {
		return nil, err
	}
	return &CompositeEvent{
		id:       id,
		pipeline: newPipeline(factory, descriptor, id, ExecuteConfigured),
	}, nil
}

func (c *CompositeEvent) ID() string {
	return c.id
}

// Kind returns the kind whose pipeline the event runs.
func (c *CompositeEvent) Kind() Kind {
	return c.pipeline.descriptor.Kind()
}

// Execution returns the active policy.
func (c *CompositeEvent) Execution() Execution {
	return c.pipeline.execution
}

// Plan returns the ids of the children that will run, in order.
func (c *CompositeEvent) Plan() []string {
	return c.pipeline.plan()
}

// Execute fires the selected children in declaration order.
func (c *CompositeEvent) Execute(ctx context.Context, sc *ScenarioContext) error {
	ctx, logger := ctxlog.With(ctx, "composite", c.id)
	logger.Debug("running composite pipeline",
		"policy", c.pipeline.execution.String(),
		"plan", c.pipeline.plan(),
	)
	return c.pipeline.run(ctx, sc)
}

func (c *CompositeEvent) composite() *CompositeEvent {
	return c
}

// CompositeBuilder configures the children of a composite event before it is
// built. Composite builder types embed *CompositeBuilder.
type CompositeBuilder struct {
	builders *BuilderFactory
	kind     Kind
	eventID  string
	pipeline *pipeline
}

// NewCompositeBuilder creates the builder of a composite event of kind.
func NewCompositeBuilder(builders *BuilderFactory, kind Kind, eventID string) (*CompositeBuilder, error) {
	descriptor, err := builders.Events().Registry().Descriptor(kind)
	if err != nil {
		return nil, err
	}
	return &CompositeBuilder{
		builders: builders,
		kind:     kind,
		eventID:  eventID,
		pipeline: newPipeline(builders.Events(), descriptor, eventID, ExecuteConfigured),
	}, nil
}

func (b *CompositeBuilder) EventID() string {
	return b.eventID
}

// AndAllPreviousSteps runs every child up to the last configured one.
func (b *CompositeBuilder) AndAllPreviousSteps() *CompositeBuilder {
	b.pipeline.execution = ExecuteConfiguredAndPreceding
	return b
}

// AndAllOtherSteps runs every child.
func (b *CompositeBuilder) AndAllOtherSteps() *CompositeBuilder {
	b.pipeline.execution = ExecuteAll
	return b
}

// OnlyConfiguredSteps runs only the configured children.
func (b *CompositeBuilder) OnlyConfiguredSteps() *CompositeBuilder {
	b.pipeline.execution = ExecuteConfigured
	return b
}

// Build constructs a fresh composite event carrying the configured children
// and policy.
func (b *CompositeBuilder) Build() (Event, error) {
	return b.builders.Events().CreateCompositeEvent(b.kind, b.eventID, maps.Clone(b.pipeline.configured), b.pipeline.execution)
}

func (b *CompositeBuilder) configurable() (*pipeline, *BuilderFactory) {
	return b.pipeline, b.builders
}
