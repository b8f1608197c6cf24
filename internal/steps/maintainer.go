package steps

import (
	"context"
	"fmt"
	"slices"

	"github.com/ewingjm/scenario-builder/internal/config"
	"github.com/ewingjm/scenario-builder/internal/ctxlog"
	"github.com/ewingjm/scenario-builder/internal/engine"
	serrors "github.com/ewingjm/scenario-builder/internal/errors"
	"github.com/ewingjm/scenario-builder/internal/interfaces"
)

// AssignmentInfo is recorded by MaintainerAssignsIssueEvent.
type AssignmentInfo struct {
	Number    int      `yaml:"number"`
	Assignees []string `yaml:"assignees"`
}

// LabellingInfo is recorded by MaintainerLabelsIssueEvent. Labels holds every
// label of the issue after labelling.
type LabellingInfo struct {
	Number int      `yaml:"number"`
	Labels []string `yaml:"labels"`
}

func openedIssue(sc *engine.ScenarioContext, variable string) (*IssueInfo, error) {
	issue, err := engine.Get[*IssueInfo](sc, variable)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, fmt.Errorf("no issue recorded under %s", variable)
	}
	return issue, nil
}

// MaintainerAssignsIssueEvent assigns the issue recorded under a context
// variable.
type MaintainerAssignsIssueEvent struct {
	id            string
	issueVariable string
	trackers      interfaces.TrackerFactory

	Assignees []string
}

func NewMaintainerAssignsIssueEvent(issueVariable string, trackers interfaces.TrackerFactory, defaults config.Defaults, eventID string) *MaintainerAssignsIssueEvent {
	return &MaintainerAssignsIssueEvent{
		id:            eventID,
		issueVariable: issueVariable,
		trackers:      trackers,
		Assignees:     defaults.Assignees,
	}
}

func (e *MaintainerAssignsIssueEvent) ID() string {
	return e.id
}

func (e *MaintainerAssignsIssueEvent) Execute(ctx context.Context, sc *engine.ScenarioContext) error {
	issue, err := openedIssue(sc, e.issueVariable)
	if err != nil {
		return err
	}
	if len(e.Assignees) == 0 {
		return fmt.Errorf("no assignees for issue #%d", issue.Number)
	}

	tracker, err := e.trackers.Tracker(interfaces.Maintainer)
	if err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("assigning issue", "event", e.id, "number", issue.Number, "assignees", e.Assignees)
	assigned, err := tracker.AssignIssue(ctx, issue.Number, e.Assignees)
	if err != nil {
		return fmt.Errorf("maintainer could not assign issue: %w", err)
	}

	sc.Set(e.id, &AssignmentInfo{Number: assigned.Number, Assignees: assigned.Assignees})
	return nil
}

// MaintainerAssignsIssueEventBuilder overrides who the issue is assigned to.
type MaintainerAssignsIssueEventBuilder struct {
	engine.BaseBuilder[*MaintainerAssignsIssueEvent]

	assignees engine.Override[[]string]
}

func (b *MaintainerAssignsIssueEventBuilder) WithAssignees(assignees ...string) *MaintainerAssignsIssueEventBuilder {
	b.assignees.Set(assignees)
	return b
}

func (b *MaintainerAssignsIssueEventBuilder) Build() (engine.Event, error) {
	e, err := b.Construct()
	if err != nil {
		return nil, err
	}
	b.assignees.ApplyTo(&e.Assignees)
	return e, nil
}

// MaintainerLabelsIssueEvent labels the issue recorded under a context
// variable with Labels, PriorityLabel and, when Triaged is set, TriagedLabel.
type MaintainerLabelsIssueEvent struct {
	id            string
	issueVariable string
	trackers      interfaces.TrackerFactory

	Labels        []string
	PriorityLabel string
	Triaged       bool
}

func NewMaintainerLabelsIssueEvent(issueVariable string, trackers interfaces.TrackerFactory, defaults config.Defaults, eventID string) *MaintainerLabelsIssueEvent {
	e := &MaintainerLabelsIssueEvent{
		id:            eventID,
		issueVariable: issueVariable,
		trackers:      trackers,
		Triaged:       true,
	}
	if defaults.Priority != "" {
		e.PriorityLabel = priorityLabel(defaults.Priority)
	}
	return e
}

func priorityLabel(priority string) string {
	return "priority/" + priority
}

func (e *MaintainerLabelsIssueEvent) ID() string {
	return e.id
}

func (e *MaintainerLabelsIssueEvent) labels() []string {
	labels := slices.Clone(e.Labels)
	if e.PriorityLabel != "" {
		labels = append(labels, e.PriorityLabel)
	}
	if e.Triaged {
		labels = append(labels, TriagedLabel)
	}
	return labels
}

func (e *MaintainerLabelsIssueEvent) Execute(ctx context.Context, sc *engine.ScenarioContext) error {
	issue, err := openedIssue(sc, e.issueVariable)
	if err != nil {
		return err
	}

	labels := e.labels()
	if len(labels) == 0 {
		return fmt.Errorf("no labels for issue #%d", issue.Number)
	}

	tracker, err := e.trackers.Tracker(interfaces.Maintainer)
	if err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("labelling issue", "event", e.id, "number", issue.Number, "labels", labels)
	all, err := tracker.LabelIssue(ctx, issue.Number, labels)
	if err != nil {
		return fmt.Errorf("maintainer could not label issue: %w", err)
	}

	sc.Set(e.id, &LabellingInfo{Number: issue.Number, Labels: all})
	return nil
}

// MaintainerLabelsIssueEventBuilder overrides how the issue is labelled.
type MaintainerLabelsIssueEventBuilder struct {
	engine.BaseBuilder[*MaintainerLabelsIssueEvent]

	labels   engine.Override[[]string]
	priority engine.Override[string]
	err      error
}

// WithLabels sets labels to add besides the priority and triage labels.
func (b *MaintainerLabelsIssueEventBuilder) WithLabels(labels ...string) *MaintainerLabelsIssueEventBuilder {
	b.labels.Set(labels)
	return b
}

// WithPriority marks the issue as triaged with the given priority.
func (b *MaintainerLabelsIssueEventBuilder) WithPriority(priority string) *MaintainerLabelsIssueEventBuilder {
	if !slices.Contains(config.Priorities, priority) {
		b.err = serrors.Newf(serrors.CodeConfiguration, "invalid priority %q: must be one of %v", priority, config.Priorities)
		return b
	}
	b.priority.Set(priority)
	return b
}

// Err returns the first invalid value passed to the builder.
func (b *MaintainerLabelsIssueEventBuilder) Err() error {
	return b.err
}

func (b *MaintainerLabelsIssueEventBuilder) Build() (engine.Event, error) {
	if b.err != nil {
		return nil, b.err
	}
	e, err := b.Construct()
	if err != nil {
		return nil, err
	}
	b.labels.ApplyTo(&e.Labels)
	if b.priority.IsSet() {
		e.PriorityLabel = priorityLabel(b.priority.Value())
		e.Triaged = true
	}
	return e, nil
}

func issueEventParams() []engine.Param {
	return []engine.Param{
		engine.P[string]("issueVariable"),
		engine.P[interfaces.TrackerFactory]("trackers"),
		engine.P[config.Defaults]("defaults"),
		engine.IDParam(),
	}
}

func builderParams() []engine.Param {
	return []engine.Param{
		engine.P[*engine.EventFactory]("events"),
		engine.IDParam(),
		engine.P[[]any](engine.ConstructorArgsParam),
	}
}

func maintainerAssignsIssueDeclaration() engine.Declaration {
	return engine.Declaration{
		Kind:   KindMaintainerAssignsIssue,
		Params: issueEventParams(),
		New: func(a engine.Args) (engine.Event, error) {
			return NewMaintainerAssignsIssueEvent(
				engine.Arg[string](a, 0),
				engine.Arg[interfaces.TrackerFactory](a, 1),
				engine.Arg[config.Defaults](a, 2),
				engine.Arg[string](a, 3),
			), nil
		},
		Builder: &engine.BuilderDecl{
			Params: builderParams(),
			New: func(a engine.Args) (engine.EventBuilder, error) {
				return &MaintainerAssignsIssueEventBuilder{
					BaseBuilder: engine.NewBaseBuilder[*MaintainerAssignsIssueEvent](
						engine.Arg[*engine.EventFactory](a, 0),
						KindMaintainerAssignsIssue,
						engine.Arg[string](a, 1),
						engine.Arg[[]any](a, 2),
					),
				}, nil
			},
		},
	}
}

func maintainerLabelsIssueDeclaration() engine.Declaration {
	return engine.Declaration{
		Kind:   KindMaintainerLabelsIssue,
		Params: issueEventParams(),
		New: func(a engine.Args) (engine.Event, error) {
			return NewMaintainerLabelsIssueEvent(
				engine.Arg[string](a, 0),
				engine.Arg[interfaces.TrackerFactory](a, 1),
				engine.Arg[config.Defaults](a, 2),
				engine.Arg[string](a, 3),
			), nil
		},
		Builder: &engine.BuilderDecl{
			Params: builderParams(),
			New: func(a engine.Args) (engine.EventBuilder, error) {
				return &MaintainerLabelsIssueEventBuilder{
					BaseBuilder: engine.NewBaseBuilder[*MaintainerLabelsIssueEvent](
						engine.Arg[*engine.EventFactory](a, 0),
						KindMaintainerLabelsIssue,
						engine.Arg[string](a, 1),
						engine.Arg[[]any](a, 2),
					),
				}, nil
			},
		},
	}
}
