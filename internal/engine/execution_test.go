package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/ewingjm/scenario-builder/internal/errors"
)

func TestSelect(t *testing.T) {
	ids := []string{"A", "B", "C", "D"}
	in := func(set ...string) func(string) bool {
		return func(id string) bool {
			for _, s := range set {
				if s == id {
					return true
				}
			}
			return false
		}
	}

	tests := []struct {
		name       string
		execution  Execution
		configured []string
		want       []string
	}{
		{"all without configuration", ExecuteAll, nil, []string{"A", "B", "C", "D"}},
		{"all ignores configuration", ExecuteAll, []string{"B"}, []string{"A", "B", "C", "D"}},
		{"configured keeps declared order", ExecuteConfigured, []string{"D", "B"}, []string{"B", "D"}},
		{"configured with nothing configured", ExecuteConfigured, nil, nil},
		{"preceding runs prefix to last configured", ExecuteConfiguredAndPreceding, []string{"A", "C"}, []string{"A", "B", "C"}},
		{"preceding with first configured", ExecuteConfiguredAndPreceding, []string{"A"}, []string{"A"}},
		{"preceding with unknown id is empty", ExecuteConfiguredAndPreceding, []string{"Z"}, []string{}},
		{"preceding with nothing configured is empty", ExecuteConfiguredAndPreceding, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(ids, tt.execution, in(tt.configured...))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectDoesNotAliasInput(t *testing.T) {
	ids := []string{"A", "B"}
	got := Select(ids, ExecuteAll, func(string) bool { return false })
	got[0] = "changed"
	assert.Equal(t, "A", ids[0])
}

func TestParseExecution(t *testing.T) {
	for _, e := range []Execution{ExecuteAll, ExecuteConfigured, ExecuteConfiguredAndPreceding} {
		got, err := ParseExecution(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := ParseExecution("sometimes")
	assert.ErrorIs(t, err, serrors.ErrConfiguration)
}
