// Package interfaces defines the ports the issue-triage events depend on.
// They decouple the events from GitHub so scenarios can run against a fake
// tracker in tests.
package interfaces

import (
	"context"
)

// IssueTracker defines the operations a persona can perform on a repository's
// issues.
type IssueTracker interface {
	// OpenIssue opens a new issue.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - req: Title, body and initial labels of the issue
	//
	// Returns:
	//   - Issue: The issue as recorded by the tracker
	//   - error: An error if the issue could not be opened
	OpenIssue(ctx context.Context, req IssueRequest) (Issue, error)

	// AssignIssue adds assignees to an existing issue.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - number: The issue number
	//   - assignees: Logins to assign
	//
	// Returns:
	//   - Issue: The issue after the assignment
	//   - error: An error if the assignees could not be added
	AssignIssue(ctx context.Context, number int, assignees []string) (Issue, error)

	// LabelIssue adds labels to an existing issue and returns the full label
	// set of the issue afterwards.
	LabelIssue(ctx context.Context, number int, labels []string) ([]string, error)
}

// TrackerFactory returns the tracker acting on behalf of a persona. Events
// take a TrackerFactory rather than a tracker so each event can act as the
// persona it models.
type TrackerFactory interface {
	Tracker(persona Persona) (IssueTracker, error)
}
