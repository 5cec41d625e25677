package deliberation

import (
	"regexp"

	"dahaonode/internal/types"
)

// votePattern matches the bold vote line. The outcome set is closed.
var votePattern = regexp.MustCompile(`\*\*VOTE:\s*(APPROVE|REJECT|ABSTAIN)\*\*`)

// VoteTally counts one vote per distinct author.
type VoteTally struct {
	Approve int
	Reject  int
	Abstain int
}

// Total returns the number of counted voters.
func (t VoteTally) Total() int {
	return t.Approve + t.Reject + t.Abstain
}

// Tally applies last-vote-wins per author over the comments in store order.
// Within a comment the last match counts; a later comment by the same
// author overrides it.
func Tally(d types.Discussion) VoteTally {
	latest := make(map[string]types.Vote)
	for _, c := range d.Comments {
		if v, ok := LastVote(c.Body); ok {
			latest[c.Author] = v
		}
	}

	var t VoteTally
	for _, v := range latest {
		switch v {
		case types.VoteApprove:
			t.Approve++
		case types.VoteReject:
			t.Reject++
		case types.VoteAbstain:
			t.Abstain++
		}
	}
	return t
}

// LastVote returns the last vote token in text.
func LastVote(text string) (types.Vote, bool) {
	matches := votePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	return types.Vote(matches[len(matches)-1][1]), true
}
