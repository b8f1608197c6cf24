//go:build e2e

package main_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ewingjm/scenario-builder/internal/testutil"
)

type e2eCase struct {
	args     []string
	expected []string
	absent   []string
	requests int
}

var e2eCases = map[string]e2eCase{
	"full-scenario": {
		args:     []string{"--expect", "size(history) == 3"},
		expected: []string{"IssueOpened:", "IssueTriage_Assignment:", "IssueTriage_Labelling:", "PASS"},
		requests: 3,
	},
	"reporter-only": {
		args:     []string{"--configure", "IssueOpened"},
		expected: []string{"IssueOpened:"},
		absent:   []string{"IssueTriage_Assignment:"},
		requests: 1,
	},
	"triage-only-configured": {
		args:     []string{"--configure", "IssueTriage", "--policy", "preceding", "--expect", `"triaged" in vars.IssueTriage_Labelling.labels`},
		expected: []string{"IssueTriage_Labelling:", "PASS"},
		requests: 3,
	},
}

func findProjectRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func buildBinary(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	projectRoot := findProjectRoot(wd)
	if projectRoot == "" {
		t.Fatal("failed to find project root")
	}

	binary := filepath.Join(t.TempDir(), "scenario")
	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/scenario")
	buildCmd.Dir = projectRoot
	var buildOut bytes.Buffer
	buildCmd.Stdout = &buildOut
	buildCmd.Stderr = &buildOut
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("failed to build scenario binary: %v\nOutput:\n%s", err, buildOut.String())
	}
	return binary
}

func TestE2E(t *testing.T) {
	binary := buildBinary(t)

	for name, tc := range e2eCases {
		t.Run(name, func(t *testing.T) {
			fake := testutil.NewFakeGitHub()
			defer fake.Close()

			configPath := filepath.Join(t.TempDir(), "scenario.yml")
			config := fmt.Sprintf(`version: 0.1.0
github:
  base_url: %s
  owner: acme
  repo: widgets
  tokens:
    reporter: ${E2E_REPORTER_TOKEN}
    maintainer: maintainer-token
defaults:
  assignees: [octocat]
  priority: high
`, fake.URL())
			if err := os.WriteFile(configPath, []byte(config), 0o600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			var out bytes.Buffer
			cmd := exec.Command(binary, append([]string{"run", "--config", configPath}, tc.args...)...)
			cmd.Env = append(os.Environ(), "E2E_REPORTER_TOKEN=reporter-token")
			cmd.Stdout = &out
			cmd.Stderr = &out
			if err := cmd.Run(); err != nil {
				t.Fatalf("failed to run scenario: %v\nOutput:\n%s", err, out.String())
			}

			if testing.Verbose() {
				t.Logf("Output:\n%s", out.String())
			}
			for _, want := range tc.expected {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected output to contain %q, got %q", want, out.String())
				}
			}
			for _, unwanted := range tc.absent {
				if strings.Contains(out.String(), unwanted) {
					t.Errorf("expected output not to contain %q, got %q", unwanted, out.String())
				}
			}
			if got := len(fake.Requests()); got != tc.requests {
				t.Errorf("expected %d requests, got %d", tc.requests, got)
			}
			if fake.Requests()[0].Token != "reporter-token" {
				t.Errorf("expected the reporter token from the environment, got %q", fake.Requests()[0].Token)
			}
		})
	}
}
