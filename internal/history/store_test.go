package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testforge/internal/validator"
)

// Test Plan for history store:
// - Open creates the database and schema on first use
// - Runs and attempts round-trip with findings intact
// - Attempts keep insertion order per run
// - FailedAttempts filters by validity, newest first

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history", "testforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	runID, err := s.BeginRun("example.py", "unit")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	verdict := validator.Verdict{
		IsValid: false,
		Findings: []validator.Finding{
			{Severity: validator.SeverityError, Message: "missing dependency: numpy"},
			{Severity: validator.SeverityWarning, Message: "file operation detected"},
		},
	}
	require.NoError(t, s.RecordAttempt(runID, "add", verdict, ""))
	require.NoError(t, s.RecordAttempt(runID, "Greeter.greet", validator.Verdict{IsValid: true, Findings: []validator.Finding{}}, "tests/unit/test_greet_ab12cd.py"))
	require.NoError(t, s.FinishRun(runID))

	attempts, err := s.Attempts(runID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	assert.Equal(t, "add", attempts[0].Target)
	assert.False(t, attempts[0].IsValid)
	require.Len(t, attempts[0].Findings, 2)
	assert.Equal(t, validator.SeverityError, attempts[0].Findings[0].Severity)
	assert.Equal(t, "missing dependency: numpy", attempts[0].Findings[0].Message)

	assert.Equal(t, "Greeter.greet", attempts[1].Target)
	assert.True(t, attempts[1].IsValid)
	assert.Equal(t, "tests/unit/test_greet_ab12cd.py", attempts[1].OutputPath)
}

func TestStore_FailedAttempts(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	runID, err := s.BeginRun("example.py", "unit")
	require.NoError(t, err)

	bad := validator.Verdict{IsValid: false, Findings: []validator.Finding{{Severity: validator.SeverityError, Message: "no valid assertions found in test code"}}}
	good := validator.Verdict{IsValid: true, Findings: []validator.Finding{}}

	require.NoError(t, s.RecordAttempt(runID, "first", bad, ""))
	require.NoError(t, s.RecordAttempt(runID, "second", good, "tests/unit/x.py"))
	require.NoError(t, s.RecordAttempt(runID, "third", bad, ""))

	failed, err := s.FailedAttempts(10)
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "third", failed[0].Target, "newest first")
	assert.Equal(t, "first", failed[1].Target)

	capped, err := s.FailedAttempts(1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)
}
