package steps

import (
	"context"
	"fmt"

	"github.com/ewingjm/scenario-builder/internal/config"
	"github.com/ewingjm/scenario-builder/internal/ctxlog"
	"github.com/ewingjm/scenario-builder/internal/engine"
	"github.com/ewingjm/scenario-builder/internal/interfaces"
)

const defaultTitle = "Scenario issue"

// IssueInfo is recorded by ReporterOpensIssueEvent under its event id.
type IssueInfo struct {
	Number int      `yaml:"number"`
	URL    string   `yaml:"url"`
	Title  string   `yaml:"title"`
	Labels []string `yaml:"labels,omitempty"`
}

// ReporterOpensIssueEvent opens an issue as the reporter. Title and Body are
// templates that can refer to .Context, .Event and .History.
type ReporterOpensIssueEvent struct {
	id       string
	trackers interfaces.TrackerFactory

	Title  string
	Body   string
	Labels []string
}

func NewReporterOpensIssueEvent(trackers interfaces.TrackerFactory, defaults config.Defaults, eventID string) *ReporterOpensIssueEvent {
	e := &ReporterOpensIssueEvent{
		id:       eventID,
		trackers: trackers,
		Title:    defaults.Title,
		Body:     defaults.Body,
		Labels:   defaults.Labels,
	}
	if e.Title == "" {
		e.Title = defaultTitle
	}
	return e
}

func (e *ReporterOpensIssueEvent) ID() string {
	return e.id
}

func (e *ReporterOpensIssueEvent) Execute(ctx context.Context, sc *engine.ScenarioContext) error {
	logger := ctxlog.FromContext(ctx)

	tracker, err := e.trackers.Tracker(interfaces.Reporter)
	if err != nil {
		return err
	}

	data := templateData{Context: sc.ID(), Event: e.id, History: sc.History()}
	title, err := render(e.Title, data)
	if err != nil {
		return fmt.Errorf("rendering title: %w", err)
	}
	body, err := render(e.Body, data)
	if err != nil {
		return fmt.Errorf("rendering body: %w", err)
	}

	logger.Info("opening issue", "event", e.id, "title", title)
	issue, err := tracker.OpenIssue(ctx, interfaces.IssueRequest{Title: title, Body: body, Labels: e.Labels})
	if err != nil {
		return fmt.Errorf("reporter could not open issue: %w", err)
	}
	logger.Info("opened issue", "event", e.id, "number", issue.Number, "url", issue.URL)

	sc.Set(e.id, &IssueInfo{
		Number: issue.Number,
		URL:    issue.URL,
		Title:  issue.Title,
		Labels: issue.Labels,
	})
	return nil
}

// ReporterOpensIssueEventBuilder overrides what the reporter writes.
type ReporterOpensIssueEventBuilder struct {
	engine.BaseBuilder[*ReporterOpensIssueEvent]

	title  engine.Override[string]
	body   engine.Override[string]
	labels engine.Override[[]string]
}

func (b *ReporterOpensIssueEventBuilder) WithTitle(title string) *ReporterOpensIssueEventBuilder {
	b.title.Set(title)
	return b
}

func (b *ReporterOpensIssueEventBuilder) WithBody(body string) *ReporterOpensIssueEventBuilder {
	b.body.Set(body)
	return b
}

// WithLabels replaces the labels the issue is opened with.
func (b *ReporterOpensIssueEventBuilder) WithLabels(labels ...string) *ReporterOpensIssueEventBuilder {
	b.labels.Set(labels)
	return b
}

func (b *ReporterOpensIssueEventBuilder) Build() (engine.Event, error) {
	e, err := b.Construct()
	if err != nil {
		return nil, err
	}
	b.title.ApplyTo(&e.Title)
	b.body.ApplyTo(&e.Body)
	b.labels.ApplyTo(&e.Labels)
	return e, nil
}

func reporterOpensIssueDeclaration() engine.Declaration {
	return engine.Declaration{
		Kind: KindReporterOpensIssue,
		Params: []engine.Param{
			engine.P[interfaces.TrackerFactory]("trackers"),
			engine.P[config.Defaults]("defaults"),
			engine.IDParam(),
		},
		New: func(a engine.Args) (engine.Event, error) {
			return NewReporterOpensIssueEvent(
				engine.Arg[interfaces.TrackerFactory](a, 0),
				engine.Arg[config.Defaults](a, 1),
				engine.Arg[string](a, 2),
			), nil
		},
		Builder: &engine.BuilderDecl{
			Params: builderParams(),
			New: func(a engine.Args) (engine.EventBuilder, error) {
				return &ReporterOpensIssueEventBuilder{
					BaseBuilder: engine.NewBaseBuilder[*ReporterOpensIssueEvent](
						engine.Arg[*engine.EventFactory](a, 0),
						KindReporterOpensIssue,
						engine.Arg[string](a, 1),
						engine.Arg[[]any](a, 2),
					),
				}, nil
			},
		},
	}
}
