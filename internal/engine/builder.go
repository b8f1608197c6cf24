package engine

import (
	"fmt"

	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

// EventBuilder defers the construction of one event. Build may be called
// more than once; each call returns a fresh event with the same overrides.
type EventBuilder interface {
	EventID() string
	Build() (Event, error)
}

// BaseBuilder carries what every leaf builder needs to construct its event.
// Builder types embed it and apply their overrides in Build:
//
//	func (b *OpenIssueBuilder) Build() (engine.Event, error) {
//		ev, err := b.Construct()
//		if err != nil {
//			return nil, err
//		}
//		b.title.ApplyTo(&ev.Title)
//		return ev, nil
//	}
type BaseBuilder[E Event] struct {
	factory *EventFactory
	kind    Kind
	eventID string
	args    []any
}

func NewBaseBuilder[E Event](factory *EventFactory, kind Kind, eventID string, args []any) BaseBuilder[E] {
	return BaseBuilder[E]{factory: factory, kind: kind, eventID: eventID, args: args}
}

func (b *BaseBuilder[E]) EventID() string {
	return b.eventID
}

// Construct creates a fresh event with the builder's id and constructor
// arguments.
func (b *BaseBuilder[E]) Construct() (E, error) {
	var zero E

	ev, err := b.factory.CreateEvent(b.kind, b.eventID, b.args)
	if err != nil {
		return zero, err
	}
	e, ok := ev.(E)
	if !ok {
		return zero, serrors.Newf(serrors.CodeDeclaration, "%s constructed %T but its builder expects %T", b.kind, ev, zero)
	}
	return e, nil
}

// Override is a builder field that only replaces the event's value when it
// was explicitly set.
type Override[T any] struct {
	value T
	set   bool
}

func (o *Override[T]) Set(v T) {
	o.value = v
	o.set = true
}

func (o Override[T]) IsSet() bool {
	return o.set
}

func (o Override[T]) Value() T {
	return o.value
}

// ApplyTo writes the value to dst if it was set.
func (o Override[T]) ApplyTo(dst *T) {
	if o.set {
		*dst = o.value
	}
}

// BuilderFactory constructs event builders from the declarations of a
// Registry.
type BuilderFactory struct {
	events   *EventFactory
	services Services
}

// NewBuilderFactory creates a factory. services may be nil.
func NewBuilderFactory(events *EventFactory, services Services) *BuilderFactory {
	return &BuilderFactory{events: events, services: services}
}

// Events returns the factory builders construct their events with.
func (f *BuilderFactory) Events() *EventFactory {
	return f.events
}

// CreateEventBuilder constructs the builder declared for kind. args are the
// constructor arguments the builder passes on to its event.
func (f *BuilderFactory) CreateEventBuilder(kind Kind, eventID string, args []any) (EventBuilder, error) {
	if eventID == "" {
		return nil, serrors.Newf(serrors.CodeConfiguration, "an event id is required to create a builder for %s", kind)
	}
	reg, err := f.events.event(kind)
	if err != nil {
		return nil, err
	}
	if reg.decl.Builder == nil {
		return nil, serrors.Newf(serrors.CodeConfiguration, "%s does not declare a builder", kind)
	}

	values, err := resolveParams(kind, reg.decl.Builder.Params, nil,
		valueOf(builderFactoryType, f),
		valueOf(eventFactoryType, f.events),
		eventIDSource(eventID),
		constructorArgsSource(args),
		serviceSource(f.services),
	)
	if err != nil {
		return nil, err
	}

	b, err := reg.decl.Builder.New(values)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.CodeConfiguration, fmt.Sprintf("constructing builder for %s", kind))
	}
	return b, nil
}

func constructorArgsSource(args []any) source {
	return func(p Param) (any, bool) {
		return args, p.Type == anySliceType && p.Name == ConstructorArgsParam
	}
}

// Configurable is implemented by the builders whose children can be
// configured: *CompositeBuilder, *ScenarioBuilder and types embedding them.
type Configurable interface {
	configurable() (*pipeline, *BuilderFactory)
}

// ConfigureEvent creates the builder of the child eventID, passes it to
// configure and records it as an override. It switches c to the policy that
// applies once children are configured. Unknown ids and builders that are
// not a B fail immediately.
func ConfigureEvent[B EventBuilder](c Configurable, eventID string, configure func(B) error) error {
	p, builders := c.configurable()

	entry, err := p.entry(eventID)
	if err != nil {
		return err
	}

	eb, err := builders.CreateEventBuilder(entry.Kind, p.childID(eventID), entry.Args)
	if err != nil {
		return err
	}
	b, ok := eb.(B)
	if !ok {
		var want B
		return serrors.Newf(serrors.CodeConfiguration, "the builder of %q is %T, not %T", eventID, eb, want)
	}

	if configure != nil {
		if err := configure(b); err != nil {
			return err
		}
	}
	if latched, ok := eb.(interface{ Err() error }); ok && latched.Err() != nil {
		return latched.Err()
	}

	if err := p.set(eventID, b); err != nil {
		return err
	}
	p.execution = p.onConfigure
	return nil
}

// ConfigureDefault marks eventID as configured without overriding any of its
// defaults.
func ConfigureDefault(c Configurable, eventID string) error {
	p, _ := c.configurable()
	if err := p.set(eventID, nil); err != nil {
		return err
	}
	p.execution = p.onConfigure
	return nil
}
