// Package tracker implements interfaces.IssueTracker on top of the GitHub
// REST API.
package tracker

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/go-github/v63/github"

	"github.com/ewingjm/scenario-builder/internal/config"
	"github.com/ewingjm/scenario-builder/internal/interfaces"
)

// GitHubTracker acts on the issues of one repository with one client.
type GitHubTracker struct {
	client *github.Client
	owner  string
	repo   string
}

func NewGitHubTracker(client *github.Client, owner, repo string) *GitHubTracker {
	return &GitHubTracker{client: client, owner: owner, repo: repo}
}

func (t *GitHubTracker) OpenIssue(ctx context.Context, req interfaces.IssueRequest) (interfaces.Issue, error) {
	issueReq := &github.IssueRequest{
		Title: github.String(req.Title),
		Body:  github.String(req.Body),
	}
	if len(req.Labels) > 0 {
		labels := append([]string(nil), req.Labels...)
		issueReq.Labels = &labels
	}

	issue, _, err := t.client.Issues.Create(ctx, t.owner, t.repo, issueReq)
	if err != nil {
		return interfaces.Issue{}, fmt.Errorf("could not open issue in %s/%s: %w", t.owner, t.repo, err)
	}
	return toIssue(issue), nil
}

func (t *GitHubTracker) AssignIssue(ctx context.Context, number int, assignees []string) (interfaces.Issue, error) {
	issue, _, err := t.client.Issues.AddAssignees(ctx, t.owner, t.repo, number, assignees)
	if err != nil {
		return interfaces.Issue{}, fmt.Errorf("could not assign issue #%d in %s/%s: %w", number, t.owner, t.repo, err)
	}
	return toIssue(issue), nil
}

func (t *GitHubTracker) LabelIssue(ctx context.Context, number int, labels []string) ([]string, error) {
	added, _, err := t.client.Issues.AddLabelsToIssue(ctx, t.owner, t.repo, number, labels)
	if err != nil {
		return nil, fmt.Errorf("could not label issue #%d in %s/%s: %w", number, t.owner, t.repo, err)
	}
	return labelNames(added), nil
}

func toIssue(issue *github.Issue) interfaces.Issue {
	result := interfaces.Issue{
		Number: issue.GetNumber(),
		URL:    issue.GetHTMLURL(),
		Title:  issue.GetTitle(),
		Labels: labelNames(issue.Labels),
	}
	for _, user := range issue.Assignees {
		result.Assignees = append(result.Assignees, user.GetLogin())
	}
	return result
}

func labelNames(labels []*github.Label) []string {
	var names []string
	for _, label := range labels {
		names = append(names, label.GetName())
	}
	return names
}

// Factory hands out one tracker per persona, each authenticated with the
// persona's token. It implements interfaces.TrackerFactory.
type Factory struct {
	cfg     config.GitHub
	baseURL *url.URL

	mu       sync.Mutex
	trackers map[interfaces.Persona]*GitHubTracker
}

func NewFactory(cfg config.GitHub) (*Factory, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github base url: %w", err)
	}
	return &Factory{
		cfg:      cfg,
		baseURL:  baseURL,
		trackers: make(map[interfaces.Persona]*GitHubTracker),
	}, nil
}

func (f *Factory) Tracker(persona interfaces.Persona) (interfaces.IssueTracker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.trackers[persona]; ok {
		return t, nil
	}

	token, ok := f.cfg.Tokens[string(persona)]
	if !ok || token == "" {
		return nil, fmt.Errorf("no token configured for persona '%s'", persona)
	}

	client := github.NewClient(nil).WithAuthToken(token)
	client.BaseURL = f.baseURL

	t := NewGitHubTracker(client, f.cfg.Owner, f.cfg.Repo)
	f.trackers[persona] = t
	return t, nil
}
