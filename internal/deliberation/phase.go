// Package deliberation infers where a discussion stands in the
// thesis → antithesis → synthesis → voting protocol and tallies its votes.
//
// Detection is a literal substring test over raw text. A marker quoted inside
// narrative text still advances the phase; fixtures depend on that behaviour.
package deliberation

import (
	"strings"

	"dahaonode/internal/types"
)

// Phase is a position in the deliberation protocol.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseThesis
	PhaseAntithesis
	PhaseSynthesis
	PhaseVoting
)

// Markers written by participants.
const (
	ThesisMarker     = "[THESIS]"
	AntithesisMarker = "[ANTITHESIS]"
	SynthesisMarker  = "[SYNTHESIS]"
	// VoteMarker signals that a vote was cast, valid outcome or not.
	VoteMarker = "**VOTE:"
)

var phaseNames = map[Phase]string{
	PhaseUnknown:    "UNKNOWN",
	PhaseThesis:     "THESIS",
	PhaseAntithesis: "ANTITHESIS",
	PhaseSynthesis:  "SYNTHESIS",
	PhaseVoting:     "VOTING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return phaseNames[PhaseUnknown]
}

// Classify returns the latest milestone reached by the discussion.
// Voting dominates any earlier marker still present in the history.
func Classify(d types.Discussion) Phase {
	switch {
	case anyComment(d.Comments, VoteMarker):
		return PhaseVoting
	case anyComment(d.Comments, SynthesisMarker):
		return PhaseSynthesis
	case anyComment(d.Comments, AntithesisMarker):
		return PhaseAntithesis
	case strings.Contains(d.Body, ThesisMarker):
		return PhaseThesis
	}
	return PhaseUnknown
}

func anyComment(comments []types.Comment, marker string) bool {
	for _, c := range comments {
		if strings.Contains(c.Body, marker) {
			return true
		}
	}
	return false
}
