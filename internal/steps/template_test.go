package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	data := templateData{Context: "ctx-1", Event: "IssueOpened", History: []string{"A", "B"}}

	testCases := []struct {
		name        string
		text        string
		expected    string
		expectError string
	}{
		{name: "plain text", text: "Widget is broken", expected: "Widget is broken"},
		{name: "context id", text: "Widget is broken ({{.Context}})", expected: "Widget is broken (ctx-1)"},
		{name: "history", text: `{{.Event}} after {{join .History ","}}`, expectError: "failed to parse template"},
		{name: "range", text: "{{range .History}}[{{.}}]{{end}}", expected: "[A][B]"},
		{name: "unknown field", text: "{{.Nope}}", expectError: "failed to execute template"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := render(tc.text, data)
			if tc.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestReporterRendersTheTitle(t *testing.T) {
	h := newHarness(t)

	s, err := h.builder(t).
		ReporterOpensIssue(func(rb *ReporterOpensIssueEventBuilder) {
			rb.WithTitle("Widget is broken ({{.Context}})").WithBody("Opened by {{.Event}}")
		}).
		Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Widget is broken ("+s.Context().ID()+")", s.IssueOpened.Title)
	assert.Equal(t, "Opened by IssueOpened", h.issue(t, s.IssueOpened.Number).Body)
}
