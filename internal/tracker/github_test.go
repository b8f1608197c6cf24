package tracker

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewingjm/scenario-builder/internal/config"
	"github.com/ewingjm/scenario-builder/internal/interfaces"
	"github.com/ewingjm/scenario-builder/internal/testutil"
)

func newFactory(t *testing.T, fake *testutil.FakeGitHub) *Factory {
	t.Helper()
	f, err := NewFactory(config.GitHub{
		BaseURL: fake.URL(),
		Owner:   "acme",
		Repo:    "widgets",
		Tokens:  map[string]string{"reporter": "reporter-token", "maintainer": "maintainer-token"},
	})
	require.NoError(t, err)
	return f
}

func TestGitHubTrackerIssueLifecycle(t *testing.T) {
	fake := testutil.NewFakeGitHub()
	defer fake.Close()

	f := newFactory(t, fake)
	ctx := context.Background()

	reporter, err := f.Tracker(interfaces.Reporter)
	require.NoError(t, err)
	issue, err := reporter.OpenIssue(ctx, interfaces.IssueRequest{
		Title:  "Widget is broken",
		Body:   "It does not turn on.",
		Labels: []string{"bug"},
	})
	require.NoError(t, err)

	assert.Positive(t, issue.Number)
	assert.Equal(t, "Widget is broken", issue.Title)
	assert.Equal(t, []string{"bug"}, issue.Labels)
	assert.Contains(t, issue.URL, "acme/widgets/issues/")

	maintainer, err := f.Tracker(interfaces.Maintainer)
	require.NoError(t, err)

	assigned, err := maintainer.AssignIssue(ctx, issue.Number, []string{"octocat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"octocat"}, assigned.Assignees)

	labels, err := maintainer.LabelIssue(ctx, issue.Number, []string{"triaged", "bug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "triaged"}, labels)

	stored := fake.Issue("acme", "widgets", issue.Number)
	require.NotNil(t, stored)
	assert.Equal(t, "It does not turn on.", stored.Body)

	var tokens []string
	for _, r := range fake.Requests() {
		tokens = append(tokens, r.Token)
	}
	assert.Equal(t, []string{"reporter-token", "maintainer-token", "maintainer-token"}, tokens)
}

func TestGitHubTrackerErrors(t *testing.T) {
	fake := testutil.NewFakeGitHub()
	defer fake.Close()

	tracker, err := newFactory(t, fake).Tracker(interfaces.Maintainer)
	require.NoError(t, err)

	_, err = tracker.AssignIssue(context.Background(), 42, []string{"octocat"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not assign issue #42 in acme/widgets")

	fake.FailWith(http.StatusInternalServerError)
	_, err = tracker.OpenIssue(context.Background(), interfaces.IssueRequest{Title: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not open issue")
}

func TestFactory(t *testing.T) {
	fake := testutil.NewFakeGitHub()
	defer fake.Close()

	f := newFactory(t, fake)

	first, err := f.Tracker(interfaces.Reporter)
	require.NoError(t, err)
	second, err := f.Tracker(interfaces.Reporter)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = f.Tracker("triager")
	assert.ErrorContains(t, err, "no token configured for persona 'triager'")

	_, err = NewFactory(config.GitHub{BaseURL: "://bad"})
	assert.Error(t, err)
}
