// Package steps contains the issue-triage events and the IssueScenario they
// compose: a reporter opens an issue and a maintainer triages it by assigning
// and labelling it.
package steps

import (
	"github.com/ewingjm/scenario-builder/internal/engine"
)

// Event and scenario kinds.
const (
	KindReporterOpensIssue     engine.Kind = "reporter.opens-issue"
	KindMaintainerTriagesIssue engine.Kind = "maintainer.triages-issue"
	KindMaintainerAssignsIssue engine.Kind = "maintainer.assigns-issue"
	KindMaintainerLabelsIssue  engine.Kind = "maintainer.labels-issue"
	KindIssueScenario          engine.Kind = "issue-scenario"
)

// Event ids declared by the IssueScenario and MaintainerTriagesIssueEvent
// pipelines.
const (
	EventIssueOpened = "IssueOpened"
	EventIssueTriage = "IssueTriage"
	EventAssignment  = "Assignment"
	EventLabelling   = "Labelling"
)

// TriagedLabel is added to every issue a maintainer labels unless the labels
// are overridden.
const TriagedLabel = "triaged"

// Register adds every event kind and the IssueScenario to r.
func Register(r *engine.Registry) error {
	decls := []engine.Declaration{
		reporterOpensIssueDeclaration(),
		maintainerAssignsIssueDeclaration(),
		maintainerLabelsIssueDeclaration(),
		maintainerTriagesIssueDeclaration(),
	}
	for _, decl := range decls {
		if err := r.Register(decl); err != nil {
			return err
		}
	}

	return r.RegisterScenario(KindIssueScenario,
		engine.Composition{Order: 0, EventID: EventIssueOpened, Kind: KindReporterOpensIssue},
		engine.Composition{Order: 1, EventID: EventIssueTriage, Kind: KindMaintainerTriagesIssue},
	)
}
