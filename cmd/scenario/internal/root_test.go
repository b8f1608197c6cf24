package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestExecute(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(b.String(), "issue-triage") {
		t.Errorf("expected help output, got %q", b.String())
	}
}
