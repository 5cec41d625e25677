package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionKnown(t *testing.T) {
	for _, a := range AllActions {
		assert.True(t, a.Known(), a)
	}
	assert.False(t, Action("LAUNCH_ROCKET").Known())
	assert.False(t, Action("").Known())
}

func TestActionNeedsTarget(t *testing.T) {
	assert.True(t, ActionCastVote.NeedsTarget())
	assert.True(t, ActionPostAntithesis.NeedsTarget())
	assert.True(t, ActionPostSynthesis.NeedsTarget())
	assert.False(t, ActionCreateProposal.NeedsTarget())
	assert.False(t, ActionDoNothing.NeedsTarget())
}

func TestDecisionHasTarget(t *testing.T) {
	assert.False(t, Decision{}.HasTarget())
	assert.False(t, Decision{TargetDiscussionID: "  "}.HasTarget())
	assert.True(t, Decision{TargetDiscussionID: "D_kwDO"}.HasTarget())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	m, err = ParseMode("vote_only")
	require.NoError(t, err)
	assert.Equal(t, ModeVoteOnly, m)

	_, err = ParseMode("chaos")
	assert.Error(t, err)
}

func TestModeAllows(t *testing.T) {
	for _, a := range AllActions {
		assert.True(t, ModeAuto.Allows(a), a)
	}

	assert.True(t, ModeVoteOnly.Allows(ActionCastVote))
	assert.False(t, ModeVoteOnly.Allows(ActionCreateProposal))
	assert.False(t, ModeVoteOnly.Allows(ActionPostSynthesis))

	assert.True(t, ModeRespond.Allows(ActionPostAntithesis))
	assert.False(t, ModeRespond.Allows(ActionCreateProposal))

	assert.True(t, ModePropose.Allows(ActionCreateProposal))
	assert.False(t, ModePropose.Allows(ActionCastVote))

	// Unrecognized actions pass through so dispatch can log them.
	assert.True(t, ModeVoteOnly.Allows(Action("SOMETHING_ELSE")))
}

func TestModeAllowedActionsIsACopy(t *testing.T) {
	allowed := ModeVoteOnly.AllowedActions()
	allowed[0] = ActionCreateProposal
	assert.Equal(t, ActionCastVote, ModeVoteOnly.AllowedActions()[0])
	assert.Len(t, ModeAuto.AllowedActions(), len(AllActions))
}
