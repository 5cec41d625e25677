package types

import "fmt"

// Mode restricts which actions a run may take.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeVoteOnly Mode = "vote_only"
	ModeRespond  Mode = "respond"
	ModePropose  Mode = "propose"
)

var modeActions = map[Mode][]Action{
	ModeVoteOnly: {ActionCastVote, ActionDoNothing},
	ModeRespond:  {ActionPostAntithesis, ActionPostSynthesis, ActionCastVote, ActionDoNothing},
	ModePropose:  {ActionCreateProposal, ActionDoNothing},
}

// ParseMode validates a mode string. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeVoteOnly, ModeRespond, ModePropose:
		return m, nil
	}
	return "", fmt.Errorf("unknown action mode %q (valid: auto, vote_only, respond, propose)", s)
}

// AllowedActions returns the actions permitted in m. Auto permits every action.
func (m Mode) AllowedActions() []Action {
	if allowed, ok := modeActions[m]; ok {
		out := make([]Action, len(allowed))
		copy(out, allowed)
		return out
	}
	out := make([]Action, len(AllActions))
	copy(out, AllActions)
	return out
}

// Allows reports whether a recognized action may run in m.
// Unrecognized actions are always let through so dispatch can report them.
func (m Mode) Allows(a Action) bool {
	allowed, ok := modeActions[m]
	if !ok || !a.Known() {
		return true
	}
	for _, candidate := range allowed {
		if candidate == a {
			return true
		}
	}
	return false
}
