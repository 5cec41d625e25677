// Package types provides shared type definitions used across the node packages.
// This package exists to break import cycles between deliberation, prompt, decision and dispatch.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"strings"
	"time"
)

// =============================================================================
// DISCUSSION SNAPSHOT
// =============================================================================

// UnknownAuthor is rendered when the store reports no author (deleted accounts).
const UnknownAuthor = "Unknown"

// Comment is a single reply in a discussion thread.
type Comment struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// Discussion is a read-only snapshot of one governance thread.
// Comments are in chronological order as returned by the store.
type Discussion struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Comments  []Comment `json:"comments"`
}

// CreatedDiscussion identifies a discussion created by the node.
type CreatedDiscussion struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// =============================================================================
// GOVERNANCE ACTIONS
// =============================================================================

// Action is the governance action chosen by the oracle.
// The set is closed; any other value is carried through as an unrecognized action.
type Action string

const (
	ActionCreateProposal Action = "CREATE_PROPOSAL"
	ActionPostAntithesis Action = "POST_ANTITHESIS"
	ActionPostSynthesis  Action = "POST_SYNTHESIS"
	ActionCastVote       Action = "CAST_VOTE"
	ActionDoNothing      Action = "DO_NOTHING"
)

// AllActions lists the recognized actions in the order they are offered to the oracle.
var AllActions = []Action{
	ActionCreateProposal,
	ActionPostAntithesis,
	ActionPostSynthesis,
	ActionCastVote,
	ActionDoNothing,
}

// Known reports whether a is one of the closed action set.
func (a Action) Known() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// NeedsTarget reports whether the action must reference an existing discussion.
func (a Action) NeedsTarget() bool {
	switch a {
	case ActionPostAntithesis, ActionPostSynthesis, ActionCastVote:
		return true
	}
	return false
}

// Vote is a vote outcome literal.
type Vote string

const (
	VoteApprove Vote = "APPROVE"
	VoteReject  Vote = "REJECT"
	VoteAbstain Vote = "ABSTAIN"
)

// Decision is the parsed oracle output. Only Action is guaranteed to be set;
// every other field is optional and validated at dispatch.
type Decision struct {
	Reasoning          string
	Action             Action
	TargetDiscussionID string
	TargetNumber       *int
	Title              string
	Content            string
	Vote               Vote
}

// HasTarget reports whether a target discussion id was supplied.
func (d Decision) HasTarget() bool {
	return strings.TrimSpace(d.TargetDiscussionID) != ""
}
