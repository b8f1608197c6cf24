package internal

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDescribeCmd(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		expectKinds []string
		expectError string
	}{
		{
			name:        "all composites",
			args:        []string{"describe"},
			expectKinds: []string{"issue-scenario", "maintainer.triages-issue"},
		},
		{
			name:        "one scenario",
			args:        []string{"describe", "issue-scenario"},
			expectKinds: []string{"issue-scenario"},
		},
		{
			name:        "leaf kind",
			args:        []string{"describe", "reporter.opens-issue"},
			expectError: "reporter.opens-issue",
		},
		{
			name:        "unknown kind",
			args:        []string{"describe", "nope"},
			expectError: "nope",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tc.args)

			err := cmd.Execute()
			if tc.expectError != "" {
				if err == nil || !strings.Contains(err.Error(), tc.expectError) {
					t.Fatalf("expected error containing %q, got %v", tc.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var views []descriptorView
			if err := yaml.Unmarshal(out.Bytes(), &views); err != nil {
				t.Fatalf("could not parse output: %v\n%s", err, out.String())
			}
			var kinds []string
			for _, v := range views {
				kinds = append(kinds, v.Kind)
			}
			if strings.Join(kinds, ",") != strings.Join(tc.expectKinds, ",") {
				t.Errorf("expected kinds %v, got %v", tc.expectKinds, kinds)
			}
		})
	}
}

func TestDescribeCmd_ShowsChildArguments(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"describe", "maintainer.triages-issue"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var views []descriptorView
	if err := yaml.Unmarshal(out.Bytes(), &views); err != nil {
		t.Fatalf("could not parse output: %v", err)
	}
	if len(views) != 1 || len(views[0].Events) != 2 {
		t.Fatalf("expected one descriptor with two events, got %+v", views)
	}
	if views[0].Scenario {
		t.Errorf("expected a composite event, not a scenario")
	}
	assignment := views[0].Events[0]
	if assignment.ID != "Assignment" || assignment.Kind != "maintainer.assigns-issue" {
		t.Errorf("unexpected first event: %+v", assignment)
	}
	if len(assignment.Args) != 1 || assignment.Args[0] != "IssueOpened" {
		t.Errorf("expected IssueOpened as the constructor argument, got %v", assignment.Args)
	}
}
