package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	kindStep      Kind = "test.step"
	kindFail      Kind = "test.fail"
	kindComposite Kind = "test.composite"
	kindAB        Kind = "test.ab"
	kindNested    Kind = "test.nested"
)

var errStepFailed = errors.New("step failed")

// execLog records the ids of executed events across every event built by a
// test, so tests can count executions independently of the history.
type execLog struct {
	ids []string
}

func (l *execLog) count(id string) int {
	n := 0
	for _, got := range l.ids {
		if got == id {
			n++
		}
	}
	return n
}

type stepEvent struct {
	id    string
	log   *execLog
	Value string
}

func (e *stepEvent) ID() string { return e.id }

func (e *stepEvent) Execute(_ context.Context, sc *ScenarioContext) error {
	e.log.ids = append(e.log.ids, e.id)
	sc.Set(e.id, e.Value)
	return nil
}

type stepBuilder struct {
	BaseBuilder[*stepEvent]
	value Override[string]
}

func (b *stepBuilder) WithValue(v string) *stepBuilder {
	b.value.Set(v)
	return b
}

func (b *stepBuilder) Build() (Event, error) {
	ev, err := b.Construct()
	if err != nil {
		return nil, err
	}
	b.value.ApplyTo(&ev.Value)
	return ev, nil
}

type failEvent struct {
	id  string
	log *execLog
}

func (e *failEvent) ID() string { return e.id }

func (e *failEvent) Execute(context.Context, *ScenarioContext) error {
	e.log.ids = append(e.log.ids, e.id)
	return errStepFailed
}

type testComposite struct {
	*CompositeEvent
}

type abOutcome struct {
	Scenario
	A string
	B string
}

func (o *abOutcome) Project(p *Projector) {
	ProjectVar(p, "A", &o.A)
	ProjectVar(p, "B", &o.B)
}

type nestedOutcome struct {
	Scenario
	A  string
	RX string
	RY string
}

func (o *nestedOutcome) Project(p *Projector) {
	ProjectVar(p, "A", &o.A)
	ProjectVar(p, "R_X", &o.RX)
	ProjectVar(p, "R_Y", &o.RY)
}

func registerStep(t *testing.T, r *Registry) {
	t.Helper()
	require.NoError(t, r.Register(Declaration{
		Kind:   kindStep,
		Params: []Param{P[*execLog]("log"), IDParam()},
		New: func(a Args) (Event, error) {
			return &stepEvent{log: Arg[*execLog](a, 0), id: Arg[string](a, 1), Value: "default"}, nil
		},
		Builder: &BuilderDecl{
			Params: []Param{P[*EventFactory]("factory"), IDParam(), P[[]any](ConstructorArgsParam)},
			New: func(a Args) (EventBuilder, error) {
				return &stepBuilder{
					BaseBuilder: NewBaseBuilder[*stepEvent](Arg[*EventFactory](a, 0), kindStep, Arg[string](a, 1), Arg[[]any](a, 2)),
				}, nil
			},
		},
	}))
}

// newTestRegistry registers a leaf kind, a failing kind, a composite kind
// with children X and Y, and the scenarios [A, B] and [A, R].
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry()
	registerStep(t, r)
	require.NoError(t, r.Register(Declaration{
		Kind:   kindFail,
		Params: []Param{P[*execLog]("log"), IDParam()},
		New: func(a Args) (Event, error) {
			return &failEvent{log: Arg[*execLog](a, 0), id: Arg[string](a, 1)}, nil
		},
	}))
	require.NoError(t, r.Register(Declaration{
		Kind:   kindComposite,
		Params: []Param{P[*EventFactory]("factory"), IDParam()},
		New: func(a Args) (Event, error) {
			c, err := NewCompositeEvent(Arg[*EventFactory](a, 0), kindComposite, Arg[string](a, 1))
			if err != nil {
				return nil, err
			}
			return &testComposite{c}, nil
		},
		Builder: &BuilderDecl{
			Params: []Param{P[*BuilderFactory]("builders"), IDParam()},
			New: func(a Args) (EventBuilder, error) {
				b, err := NewCompositeBuilder(Arg[*BuilderFactory](a, 0), kindComposite, Arg[string](a, 1))
				if err != nil {
					return nil, err
				}
				return b, nil
			},
		},
		Composition: []Composition{
			{Order: 1, EventID: "Y", Kind: kindStep},
			{Order: 0, EventID: "X", Kind: kindStep},
		},
	}))
	require.NoError(t, r.RegisterScenario(kindAB,
		Composition{Order: 0, EventID: "A", Kind: kindStep},
		Composition{Order: 1, EventID: "B", Kind: kindStep},
	))
	require.NoError(t, r.RegisterScenario(kindNested,
		Composition{Order: 0, EventID: "A", Kind: kindStep},
		Composition{Order: 1, EventID: "R", Kind: kindComposite},
	))
	return r
}

func newABBuilder(t *testing.T, r *Registry, log *execLog) *ScenarioBuilder[*abOutcome] {
	t.Helper()
	b, err := NewScenarioBuilder(r, kindAB, func() *abOutcome { return &abOutcome{} },
		WithServices(Provide(NewServiceCollection(), log)))
	require.NoError(t, err)
	return b
}

func newNestedBuilder(t *testing.T, r *Registry, log *execLog) *ScenarioBuilder[*nestedOutcome] {
	t.Helper()
	b, err := NewScenarioBuilder(r, kindNested, func() *nestedOutcome { return &nestedOutcome{} },
		WithServices(Provide(NewServiceCollection(), log)))
	require.NoError(t, err)
	return b
}

func withValue(v string) func(*stepBuilder) error {
	return func(b *stepBuilder) error {
		b.WithValue(v)
		return nil
	}
}
