package steps

import (
	"github.com/ewingjm/scenario-builder/internal/engine"
)

// MaintainerTriagesIssueEvent assigns and then labels the opened issue.
type MaintainerTriagesIssueEvent struct {
	*engine.CompositeEvent
}

func NewMaintainerTriagesIssueEvent(events *engine.EventFactory, eventID string) (*MaintainerTriagesIssueEvent, error) {
	c, err := engine.NewCompositeEvent(events, KindMaintainerTriagesIssue, eventID)
	if err != nil {
		return nil, err
	}
	return &MaintainerTriagesIssueEvent{CompositeEvent: c}, nil
}

// MaintainerTriagesIssueEventBuilder configures the triage steps. The first
// error from a configurator is kept and returned by Err and Build.
type MaintainerTriagesIssueEventBuilder struct {
	*engine.CompositeBuilder
	err error
}

// ByAssigningTheIssue configures the assignment. fn may be nil to run it with
// its defaults.
func (b *MaintainerTriagesIssueEventBuilder) ByAssigningTheIssue(fn func(*MaintainerAssignsIssueEventBuilder)) *MaintainerTriagesIssueEventBuilder {
	if b.err == nil {
		b.err = engine.ConfigureEvent(b, EventAssignment, func(ab *MaintainerAssignsIssueEventBuilder) error {
			if fn != nil {
				fn(ab)
			}
			return nil
		})
	}
	return b
}

// ByLabellingTheIssue configures the labelling. fn may be nil to run it with
// its defaults.
func (b *MaintainerTriagesIssueEventBuilder) ByLabellingTheIssue(fn func(*MaintainerLabelsIssueEventBuilder)) *MaintainerTriagesIssueEventBuilder {
	if b.err == nil {
		b.err = engine.ConfigureEvent(b, EventLabelling, func(lb *MaintainerLabelsIssueEventBuilder) error {
			if fn != nil {
				fn(lb)
			}
			return nil
		})
	}
	return b
}

func (b *MaintainerTriagesIssueEventBuilder) AndAllPreviousSteps() *MaintainerTriagesIssueEventBuilder {
	b.CompositeBuilder.AndAllPreviousSteps()
	return b
}

func (b *MaintainerTriagesIssueEventBuilder) AndAllOtherSteps() *MaintainerTriagesIssueEventBuilder {
	b.CompositeBuilder.AndAllOtherSteps()
	return b
}

func (b *MaintainerTriagesIssueEventBuilder) OnlyConfiguredSteps() *MaintainerTriagesIssueEventBuilder {
	b.CompositeBuilder.OnlyConfiguredSteps()
	return b
}

func (b *MaintainerTriagesIssueEventBuilder) Err() error {
	return b.err
}

func (b *MaintainerTriagesIssueEventBuilder) Build() (engine.Event, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.CompositeBuilder.Build()
}

func maintainerTriagesIssueDeclaration() engine.Declaration {
	return engine.Declaration{
		Kind:   KindMaintainerTriagesIssue,
		Params: []engine.Param{engine.P[*engine.EventFactory]("events"), engine.IDParam()},
		New: func(a engine.Args) (engine.Event, error) {
			e, err := NewMaintainerTriagesIssueEvent(engine.Arg[*engine.EventFactory](a, 0), engine.Arg[string](a, 1))
			if err != nil {
				return nil, err
			}
			return e, nil
		},
		Builder: &engine.BuilderDecl{
			Params: []engine.Param{engine.P[*engine.BuilderFactory]("builders"), engine.IDParam()},
			New: func(a engine.Args) (engine.EventBuilder, error) {
				c, err := engine.NewCompositeBuilder(engine.Arg[*engine.BuilderFactory](a, 0), KindMaintainerTriagesIssue, engine.Arg[string](a, 1))
				if err != nil {
					return nil, err
				}
				return &MaintainerTriagesIssueEventBuilder{CompositeBuilder: c}, nil
			},
		},
		Composition: []engine.Composition{
			{Order: 0, EventID: EventAssignment, Kind: KindMaintainerAssignsIssue, Args: []any{EventIssueOpened}},
			{Order: 1, EventID: EventLabelling, Kind: KindMaintainerLabelsIssue, Args: []any{EventIssueOpened}},
		},
	}
}
