package engine

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

var (
	eventFactoryType   = reflect.TypeFor[*EventFactory]()
	builderFactoryType = reflect.TypeFor[*BuilderFactory]()
	stringType         = reflect.TypeFor[string]()
	anySliceType       = reflect.TypeFor[[]any]()
)

// source resolves a parameter that was not supplied explicitly.
type source func(p Param) (any, bool)

// resolveParams fills params in declaration order. Explicit args take the
// first positions; every remaining parameter is offered to sources in turn,
// and a sourced value is only taken when it fits the parameter type.
func resolveParams(kind Kind, params []Param, args []any, sources ...source) (Args, error) {
	if len(args) > len(params) {
		return nil, serrors.Newf(serrors.CodeConfiguration, "%s accepts %d constructor arguments but %d were supplied", kind, len(params), len(args))
	}

	resolved := make(Args, len(params))
	for i, p := range params {
		if i < len(args) {
			if !assignable(args[i], p.Type) {
				return nil, serrors.Newf(serrors.CodeConfiguration, "argument %d of %s is a %T, which cannot be used as parameter %s of type %s", i, kind, args[i], p.Name, p.Type)
			}
			resolved[i] = args[i]
			continue
		}

		found := false
		for _, src := range sources {
			if v, ok := src(p); ok && assignable(v, p.Type) {
				resolved[i] = v
				found = true
				break
			}
		}
		if !found {
			return nil, serrors.Newf(serrors.CodeUnresolvedParameter, "unable to resolve parameter %s of type %s for %s", p.Name, p.Type, kind)
		}
	}
	return resolved, nil
}

func assignable(v any, t reflect.Type) bool {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return true
		default:
			return false
		}
	}
	return reflect.TypeOf(v).AssignableTo(t)
}

func valueOf(t reflect.Type, v any) source {
	return func(p Param) (any, bool) {
		return v, p.Type == t
	}
}

func eventIDSource(id string) source {
	return func(p Param) (any, bool) {
		return id, p.Type == stringType && strings.EqualFold(p.Name, EventIDParam)
	}
}

func serviceSource(services Services) source {
	return func(p Param) (any, bool) {
		if services == nil {
			return nil, false
		}
		return services.Lookup(p.Type)
	}
}

// exactTypeSource matches values by their dynamic type.
func exactTypeSource(values ...any) source {
	return func(p Param) (any, bool) {
		for _, v := range values {
			if reflect.TypeOf(v) == p.Type {
				return v, true
			}
		}
		return nil, false
	}
}

// EventFactory constructs events from the declarations of a Registry.
type EventFactory struct {
	registry *Registry
	services Services
}

// NewEventFactory creates a factory. services may be nil.
func NewEventFactory(registry *Registry, services Services) *EventFactory {
	return &EventFactory{registry: registry, services: services}
}

// Registry returns the registry the factory reads declarations from.
func (f *EventFactory) Registry() *Registry {
	return f.registry
}

func (f *EventFactory) event(kind Kind) (*registration, error) {
	reg, ok := f.registry.lookup(kind)
	if !ok {
		return nil, serrors.Newf(serrors.CodeConfiguration, "%s is not registered", kind)
	}
	if reg.scenario {
		return nil, serrors.Newf(serrors.CodeConfiguration, "%s is a scenario, not an event", kind)
	}
	return reg, nil
}

// CreateEvent constructs an event of kind with the given id. args are used
// for the leading parameters of the declaration; the rest are resolved from
// the factory itself, the id and the services.
func (f *EventFactory) CreateEvent(kind Kind, id string, args []any) (Event, error) {
	reg, err := f.event(kind)
	if err != nil {
		return nil, err
	}

	values, err := resolveParams(kind, reg.decl.Params, args,
		valueOf(eventFactoryType, f),
		eventIDSource(id),
		serviceSource(f.services),
	)
	if err != nil {
		return nil, err
	}

	ev, err := reg.decl.New(values)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.CodeConfiguration, fmt.Sprintf("constructing %s", kind))
	}
	return ev, nil
}

// CreateCompositeEvent constructs a composite event of kind, then replays
// configured onto it and sets its execution policy. The configured map and
// the execution are also available to the constructor by exact type.
func (f *EventFactory) CreateCompositeEvent(kind Kind, id string, configured map[string]EventBuilder, execution Execution) (Composite, error) {
	reg, err := f.event(kind)
	if err != nil {
		return nil, err
	}
	if !reg.composite() {
		return nil, serrors.Newf(serrors.CodeConfiguration, "%s is not a composite event", kind)
	}

	values, err := resolveParams(kind, reg.decl.Params, nil,
		valueOf(eventFactoryType, f),
		eventIDSource(id),
		serviceSource(f.services),
		exactTypeSource(configured, execution),
	)
	if err != nil {
		return nil, err
	}

	ev, err := reg.decl.New(values)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.CodeConfiguration, fmt.Sprintf("constructing %s", kind))
	}
	c, ok := ev.(Composite)
	if !ok {
		return nil, serrors.Newf(serrors.CodeDeclaration, "%s constructed %T, which does not embed *CompositeEvent", kind, ev)
	}

	p := c.composite().pipeline
	for _, childID := range slices.Sorted(maps.Keys(configured)) {
		if err := p.set(childID, configured[childID]); err != nil {
			return nil, err
		}
	}
	p.execution = execution
	return c, nil
}
