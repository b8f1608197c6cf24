package steps

import (
	"context"

	"github.com/ewingjm/scenario-builder/internal/engine"
)

// IssueScenario is an issue opened by a reporter and triaged by a maintainer.
// Fields stay nil for events that did not run.
type IssueScenario struct {
	engine.Scenario `yaml:"-"`

	IssueOpened           *IssueInfo      `yaml:"IssueOpened,omitempty"`
	IssueTriageAssignment *AssignmentInfo `yaml:"IssueTriage_Assignment,omitempty"`
	IssueTriageLabelling  *LabellingInfo  `yaml:"IssueTriage_Labelling,omitempty"`
}

func (s *IssueScenario) Project(p *engine.Projector) {
	engine.ProjectVar(p, EventIssueOpened, &s.IssueOpened)
	engine.ProjectVar(p, EventIssueTriage+"_"+EventAssignment, &s.IssueTriageAssignment)
	engine.ProjectVar(p, EventIssueTriage+"_"+EventLabelling, &s.IssueTriageLabelling)
}

// IssueScenarioBuilder configures and builds IssueScenarios. The first error
// from a configuration call is kept and returned by Err, Build and Extend.
type IssueScenarioBuilder struct {
	*engine.ScenarioBuilder[*IssueScenario]
	err error
}

// NewIssueScenarioBuilder creates a builder from a registry populated by
// Register. The services must provide an interfaces.TrackerFactory and a
// config.Defaults.
func NewIssueScenarioBuilder(r *engine.Registry, opts ...engine.Option) (*IssueScenarioBuilder, error) {
	b, err := engine.NewScenarioBuilder(r, KindIssueScenario, func() *IssueScenario { return &IssueScenario{} }, opts...)
	if err != nil {
		return nil, err
	}
	return &IssueScenarioBuilder{ScenarioBuilder: b}, nil
}

// ReporterOpensIssue configures the opening of the issue. fn may be nil to
// run it with its defaults.
func (b *IssueScenarioBuilder) ReporterOpensIssue(fn func(*ReporterOpensIssueEventBuilder)) *IssueScenarioBuilder {
	if b.err == nil {
		b.err = engine.ConfigureEvent(b, EventIssueOpened, func(rb *ReporterOpensIssueEventBuilder) error {
			if fn != nil {
				fn(rb)
			}
			return nil
		})
	}
	return b
}

// MaintainerTriagesIssue configures the triage. fn may be nil to run it with
// its defaults.
func (b *IssueScenarioBuilder) MaintainerTriagesIssue(fn func(*MaintainerTriagesIssueEventBuilder)) *IssueScenarioBuilder {
	if b.err == nil {
		b.err = engine.ConfigureEvent(b, EventIssueTriage, func(tb *MaintainerTriagesIssueEventBuilder) error {
			if fn != nil {
				fn(tb)
			}
			return nil
		})
	}
	return b
}

// ConfigureDefaults configures the given top-level events without overriding
// anything.
func (b *IssueScenarioBuilder) ConfigureDefaults(eventIDs ...string) *IssueScenarioBuilder {
	for _, id := range eventIDs {
		if b.err != nil {
			break
		}
		b.err = engine.ConfigureDefault(b, id)
	}
	return b
}

func (b *IssueScenarioBuilder) AndAllPreviousSteps() *IssueScenarioBuilder {
	b.ScenarioBuilder.AndAllPreviousSteps()
	return b
}

func (b *IssueScenarioBuilder) AndAllOtherSteps() *IssueScenarioBuilder {
	b.ScenarioBuilder.AndAllOtherSteps()
	return b
}

func (b *IssueScenarioBuilder) OnlyConfiguredSteps() *IssueScenarioBuilder {
	b.ScenarioBuilder.OnlyConfiguredSteps()
	return b
}

func (b *IssueScenarioBuilder) Err() error {
	return b.err
}

func (b *IssueScenarioBuilder) Build(ctx context.Context) (*IssueScenario, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.ScenarioBuilder.Build(ctx)
}

// Extend continues a scenario built earlier, running only the events that
// have not fired against it yet.
func (b *IssueScenarioBuilder) Extend(ctx context.Context, s *IssueScenario) (*IssueScenario, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.ScenarioBuilder.Extend(ctx, s)
}
