package engine

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

// EventIDParam is the parameter name that receives the id of the event being
// constructed. It is matched case-insensitively.
const EventIDParam = "eventId"

// ConstructorArgsParam is the builder parameter name that receives the
// constructor arguments to pass through to the event.
const ConstructorArgsParam = "constructorArgs"

// Param declares one constructor parameter of an event or builder.
type Param struct {
	Name string
	Type reflect.Type
}

// P declares a parameter of type T.
func P[T any](name string) Param {
	return Param{Name: name, Type: reflect.TypeFor[T]()}
}

// IDParam declares the parameter that receives the event id.
func IDParam() Param {
	return P[string](EventIDParam)
}

// Args holds resolved constructor values, one per declared Param.
type Args []any

// Arg returns args[i] as a T. Values are checked against the declared Param
// before a constructor runs, so a failed assertion only happens for nil.
func Arg[T any](args Args, i int) T {
	v, _ := args[i].(T)
	return v
}

// Constructor builds an event from resolved arguments.
type Constructor func(Args) (Event, error)

// BuilderDecl declares how to construct the builder of an event kind.
type BuilderDecl struct {
	Params []Param
	New    func(Args) (EventBuilder, error)
}

// Composition is one entry of a pipeline declaration.
type Composition struct {
	Order   int
	EventID string
	Kind    Kind
	Args    []any
}

// Declaration registers an event kind. Kinds with a Composition are composite
// events and must construct a value embedding *CompositeEvent.
type Declaration struct {
	Kind        Kind
	Params      []Param
	New         Constructor
	Builder     *BuilderDecl
	Composition []Composition
}

type registration struct {
	decl     Declaration
	scenario bool

	once       sync.Once
	descriptor *Descriptor
	err        error
}

func (r *registration) composite() bool {
	return r.scenario || len(r.decl.Composition) > 0
}

// Registry holds event and scenario declarations. It is safe for concurrent
// use; descriptors are validated once per kind on first use.
type Registry struct {
	mu   sync.RWMutex
	regs map[Kind]*registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{regs: make(map[Kind]*registration)}
}

// Register adds an event declaration.
func (r *Registry) Register(decl Declaration) error {
	if decl.Kind == "" {
		return serrors.New(serrors.CodeDeclaration, "event kind must not be empty")
	}
	if decl.New == nil {
		return serrors.Newf(serrors.CodeDeclaration, "%s has no constructor", decl.Kind)
	}
	return r.add(&registration{decl: decl})
}

// RegisterScenario adds a scenario declaration composed of the given entries.
func (r *Registry) RegisterScenario(kind Kind, entries ...Composition) error {
	if kind == "" {
		return serrors.New(serrors.CodeDeclaration, "scenario kind must not be empty")
	}
	return r.add(&registration{
		decl:     Declaration{Kind: kind, Composition: entries},
		scenario: true,
	})
}

func (r *Registry) add(reg *registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regs[reg.decl.Kind]; exists {
		return serrors.Newf(serrors.CodeDeclaration, "%s is already registered", reg.decl.Kind)
	}
	r.regs[reg.decl.Kind] = reg
	return nil
}

func (r *Registry) lookup(kind Kind) (*registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[kind]
	return reg, ok
}

// Kinds returns every registered kind in lexical order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.regs))
	for k := range r.regs {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// IsScenario reports whether kind was registered with RegisterScenario.
func (r *Registry) IsScenario(kind Kind) bool {
	reg, ok := r.lookup(kind)
	return ok && reg.scenario
}

// Descriptor returns the validated pipeline of a composite or scenario kind.
func (r *Registry) Descriptor(kind Kind) (*Descriptor, error) {
	reg, ok := r.lookup(kind)
	if !ok {
		return nil, serrors.Newf(serrors.CodeConfiguration, "%s is not registered", kind)
	}
	if !reg.composite() {
		return nil, serrors.Newf(serrors.CodeConfiguration, "%s does not declare a composition", kind)
	}

	reg.once.Do(func() {
		reg.descriptor, reg.err = r.validate(reg.decl)
	})
	return reg.descriptor, reg.err
}

func (r *Registry) validate(decl Declaration) (*Descriptor, error) {
	entries := append([]Composition(nil), decl.Composition...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })

	var duplicates []string
	byID := make(map[string]Composition, len(entries))
	for i, e := range entries {
		if i > 0 && entries[i-1].Order == e.Order {
			order := fmt.Sprint(e.Order)
			if len(duplicates) == 0 || duplicates[len(duplicates)-1] != order {
				duplicates = append(duplicates, order)
			}
		}
		if e.EventID == "" {
			return nil, serrors.Newf(serrors.CodeDeclaration, "%s declares an event without an id at order %d", decl.Kind, e.Order)
		}
		if _, exists := byID[e.EventID]; exists {
			return nil, serrors.Newf(serrors.CodeDeclaration, "%s declares event id %q more than once", decl.Kind, e.EventID)
		}
		child, ok := r.lookup(e.Kind)
		if !ok {
			return nil, serrors.Newf(serrors.CodeDeclaration, "%s declares event %q of unregistered kind %s", decl.Kind, e.EventID, e.Kind)
		}
		if child.scenario {
			return nil, serrors.Newf(serrors.CodeDeclaration, "%s declares event %q of kind %s, which is a scenario and not an event", decl.Kind, e.EventID, e.Kind)
		}
		byID[e.EventID] = e
	}
	if len(duplicates) > 0 {
		return nil, serrors.Newf(serrors.CodeDeclaration, "%s: multiple events have the same order: %s", decl.Kind, strings.Join(duplicates, ", "))
	}

	return &Descriptor{kind: decl.Kind, entries: entries, byID: byID}, nil
}

// Descriptor is the validated, order-sorted pipeline of a kind. It is
// immutable and shared by every instance of the kind.
type Descriptor struct {
	kind    Kind
	entries []Composition
	byID    map[string]Composition
}

// Kind returns the kind the descriptor belongs to.
func (d *Descriptor) Kind() Kind {
	return d.kind
}

// EventIDs returns the declared ids in ascending order.
func (d *Descriptor) EventIDs() []string {
	ids := make([]string, len(d.entries))
	for i, e := range d.entries {
		ids[i] = e.EventID
	}
	return ids
}

// Entries returns a copy of the declared entries in ascending order.
func (d *Descriptor) Entries() []Composition {
	return append([]Composition(nil), d.entries...)
}

// Entry returns the entry declared with id.
func (d *Descriptor) Entry(id string) (Composition, bool) {
	e, ok := d.byID[id]
	return e, ok
}
