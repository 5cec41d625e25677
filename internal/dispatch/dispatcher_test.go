package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dahaonode/internal/types"
	"dahaonode/internal/values"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var privacyDelta = values.Delta{Values: []values.PrivateValue{
	{Kind: values.KindTerms, Key: "@privacy", Definition: "data minimization by default"},
}}

const privacyHeader = "📌 **MY FORK VALUES:**\n• @privacy: \"data minimization by default\"\n\n---\n\n"

func newDispatcher(store *MockStore) (*Dispatcher, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(store, privacyDelta, "", zap.New(core)), logs
}

func TestHeader(t *testing.T) {
	assert.Equal(t, privacyHeader, Header(privacyDelta))
	assert.Equal(t, "📌 **MY FORK VALUES:**\n"+values.AlignedPlaceholder+"\n\n---\n\n", Header(values.Delta{}))
}

func TestHasHeader(t *testing.T) {
	assert.True(t, HasHeader("MY FORK VALUES: mine"))
	assert.True(t, HasHeader("pinned 📌"))
	assert.False(t, HasHeader("my fork values"))
	assert.False(t, HasHeader(""))
}

func TestDispatch_CreateProposal(t *testing.T) {
	store := &MockStore{}
	d, _ := newDispatcher(store)

	out, err := d.Dispatch(context.Background(), types.Decision{
		Action:  types.ActionCreateProposal,
		Title:   "[THESIS] Define @privacy",
		Content: "Proposal body",
	})
	require.NoError(t, err)
	assert.True(t, out.Mutated)
	require.NotNil(t, out.Created)
	assert.Equal(t, 42, out.Created.Number)

	require.Len(t, store.Proposals, 1)
	assert.Equal(t, createdProposal{
		Title:    "[THESIS] Define @privacy",
		Body:     privacyHeader + "Proposal body",
		Category: DefaultCategory,
	}, store.Proposals[0])
}

func TestDispatch_ConfiguredCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     string
	}{
		{name: "configured", category: "Proposals", want: "Proposals"},
		{name: "blank falls back", category: "  ", want: DefaultCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			d := New(store, privacyDelta, tt.category, nil)
			assert.Equal(t, tt.want, d.Category())

			_, err := d.Dispatch(context.Background(), types.Decision{Action: types.ActionCreateProposal, Title: "t"})
			require.NoError(t, err)
			require.Len(t, store.Proposals, 1)
			assert.Equal(t, tt.want, store.Proposals[0].Category)
		})
	}
}

func TestDispatch_UntitledProposal(t *testing.T) {
	store := &MockStore{}
	d, _ := newDispatcher(store)

	_, err := d.Dispatch(context.Background(), types.Decision{Action: types.ActionCreateProposal, Content: "x"})
	require.NoError(t, err)
	require.Len(t, store.Proposals, 1)
	assert.Equal(t, DefaultTitle, store.Proposals[0].Title)
}

func TestDispatch_HeaderNotDuplicated(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "marker text", content: "MY FORK VALUES already stated\nbody"},
		{name: "pin only", content: "📌 pinned\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			d, _ := newDispatcher(store)

			_, err := d.Dispatch(context.Background(), types.Decision{
				Action:             types.ActionPostAntithesis,
				TargetDiscussionID: "D_12",
				Content:            tt.content,
			})
			require.NoError(t, err)
			require.Len(t, store.Comments, 1)
			assert.Equal(t, tt.content, store.Comments[0].Body)
		})
	}
}

func TestDispatch_Comments(t *testing.T) {
	for _, action := range []types.Action{types.ActionPostAntithesis, types.ActionPostSynthesis} {
		t.Run(string(action), func(t *testing.T) {
			store := &MockStore{}
			d, _ := newDispatcher(store)
			n := 12

			out, err := d.Dispatch(context.Background(), types.Decision{
				Action:             action,
				TargetDiscussionID: "D_12",
				TargetNumber:       &n,
				Content:            "[ANTITHESIS] counterpoint",
			})
			require.NoError(t, err)
			assert.True(t, out.Mutated)
			assert.Equal(t, []postedComment{{DiscussionID: "D_12", Body: privacyHeader + "[ANTITHESIS] counterpoint"}}, store.Comments)
		})
	}
}

func TestDispatch_CastVote(t *testing.T) {
	tests := []struct {
		name     string
		decision types.Decision
		want     string
	}{
		{
			name: "explicit vote",
			decision: types.Decision{
				Action: types.ActionCastVote, TargetDiscussionID: "D_12",
				Vote: types.VoteApprove, Reasoning: "Aligns with @privacy",
			},
			want: privacyHeader + "**VOTE: APPROVE**\n\n*Aligns with @privacy*",
		},
		{
			name:     "missing vote abstains",
			decision: types.Decision{Action: types.ActionCastVote, TargetDiscussionID: "D_12"},
			want:     privacyHeader + "**VOTE: ABSTAIN**\n\n**",
		},
		{
			name: "header check uses content",
			decision: types.Decision{
				Action: types.ActionCastVote, TargetDiscussionID: "D_12",
				Vote: types.VoteReject, Reasoning: "no", Content: "📌",
			},
			want: "**VOTE: REJECT**\n\n*no*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			d, _ := newDispatcher(store)

			_, err := d.Dispatch(context.Background(), tt.decision)
			require.NoError(t, err)
			require.Len(t, store.Comments, 1)
			assert.Equal(t, tt.want, store.Comments[0].Body)
		})
	}
}

func TestDispatch_MissingTarget(t *testing.T) {
	for _, action := range []types.Action{types.ActionPostAntithesis, types.ActionPostSynthesis, types.ActionCastVote} {
		t.Run(string(action), func(t *testing.T) {
			store := &MockStore{}
			d, logs := newDispatcher(store)

			out, err := d.Dispatch(context.Background(), types.Decision{
				Action:             action,
				TargetDiscussionID: "  ",
				Vote:               types.VoteApprove,
			})
			assert.ErrorIs(t, err, ErrMissingTarget)
			assert.False(t, out.Mutated)
			assert.Zero(t, store.calls())
			assert.Equal(t, 1, logs.FilterMessage("No target discussion ID").Len())
		})
	}
}

func TestDispatch_DoNothingAndUnknown(t *testing.T) {
	store := &MockStore{}
	d, logs := newDispatcher(store)

	out, err := d.Dispatch(context.Background(), types.Decision{Action: types.ActionDoNothing})
	require.NoError(t, err)
	assert.False(t, out.Mutated)
	assert.Equal(t, 1, logs.FilterMessage("Chose to do nothing").Len())

	out, err = d.Dispatch(context.Background(), types.Decision{Action: "DANCE", TargetDiscussionID: "D_1"})
	require.NoError(t, err)
	assert.False(t, out.Mutated)
	unknown := logs.FilterMessage("Unknown action")
	require.Equal(t, 1, unknown.Len())
	assert.Equal(t, zapcore.WarnLevel, unknown.All()[0].Level)

	assert.Zero(t, store.calls())
}

func TestDispatch_StoreFailure(t *testing.T) {
	boom := errors.New("boom")
	store := &MockStore{Err: boom}
	d, _ := newDispatcher(store)

	out, err := d.Dispatch(context.Background(), types.Decision{Action: types.ActionPostSynthesis, TargetDiscussionID: "D_1"})
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, boom)
	assert.False(t, out.Mutated)
	assert.Len(t, store.Comments, 1, "exactly one attempt")

	out, err = d.Dispatch(context.Background(), types.Decision{Action: types.ActionCreateProposal})
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Nil(t, out.Created)
}
