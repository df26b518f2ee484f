package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionIDEmbedsTimestampAndSuffix(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)
	id, err := NewSessionID(now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(id), "20260301T093015-"))
	assert.Len(t, string(id), len("20260301T093015-")+8)
}

func TestNewSessionIDIsNeverReused(t *testing.T) {
	t.Parallel()

	now := time.Now()
	seen := map[SessionID]struct{}{}
	for range 100 {
		id, err := NewSessionID(now)
		require.NoError(t, err)

		_, dup := seen[id]
		require.False(t, dup, "duplicate session id %s", id)
		seen[id] = struct{}{}
	}
}

func TestPermanentClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, Permanent(ErrMultiUserModeRequired))
	assert.True(t, Permanent(fmt.Errorf("create user: %w", ErrMultiUserModeRequired)))
	assert.True(t, Permanent(&APIError{Op: "create user", Detail: "missing id"}))
	assert.True(t, Permanent(fmt.Errorf("wrapped: %w", &APIError{Op: "x", Detail: "y"})))
	assert.False(t, Permanent(errors.New("connection refused")))
}

func TestProvisionFailureWrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	failure := &ProvisionFailure{Step: StepCreatingWorkspace, UserID: "7", Err: cause}

	assert.ErrorIs(t, failure, cause)
	assert.Contains(t, failure.Error(), "creating_workspace")
}

func TestStepOutcomeHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, StepPerformed().Performed)
	skipped := StepSkipped("folder empty")
	assert.False(t, skipped.Performed)
	assert.Equal(t, "folder empty", skipped.Reason)
}
