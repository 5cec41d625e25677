// Package prompt assembles the decision prompt sent to the oracle.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dahaonode/internal/deliberation"
	"dahaonode/internal/types"
	"dahaonode/internal/values"
)

// Rendering limits.
const (
	MaxDiscussions      = 5
	MaxSummaryTokens    = 10
	MaxRenderedComments = 3
	TitleLimit          = 50
	BodyLimit           = 500
	CommentLimit        = 200
)

const banner = "═══════════════════════════════════════════════════════════════════"

// Input is everything the assembler reads. It performs no I/O.
type Input struct {
	Delta       values.Delta
	Catalog     *values.Catalog
	Discussions []types.Discussion
	Mode        types.Mode
}

// section is one bannered block of the prompt.
type section struct {
	title string
	body  string
}

// Assembler renders Input into the fixed prompt template.
type Assembler struct {
	// preamble opens the prompt before the first section
	preamble string

	// sectionSeparator is inserted between sections
	sectionSeparator string
}

// NewAssembler creates an assembler with the governance node template.
func NewAssembler() *Assembler {
	return &Assembler{
		preamble:         "You are a DAHAO Governance Node participating in democratic governance.",
		sectionSeparator: "\n\n",
	}
}

// Assemble is a shorthand for NewAssembler().Assemble(in).
func Assemble(in Input) string {
	return NewAssembler().Assemble(in)
}

// Assemble builds the prompt. The output depends only on in.
func (a *Assembler) Assemble(in Input) string {
	sections := []section{
		{"YOUR IDENTITY (Fork Values - Your Personal Beliefs)", in.Delta.String()},
		{"SHARED LAW (Main Repo - What You Can Reference)", MainSummary(in.Catalog)},
		{"CURRENT DISCUSSIONS", RenderDiscussions(in.Discussions)},
		{"RULES", rules(in.Mode)},
		{"RESPOND WITH JSON ONLY", responseContract},
	}

	var sb strings.Builder
	sb.WriteString(a.preamble)
	for _, s := range sections {
		sb.WriteString(a.sectionSeparator)
		sb.WriteString(banner)
		sb.WriteString("\n")
		sb.WriteString(s.title)
		sb.WriteString("\n")
		sb.WriteString(banner)
		sb.WriteString("\n")
		sb.WriteString(s.body)
	}
	return sb.String()
}

// MainSummary lists up to MaxSummaryTokens citable terms and principles in catalog order.
func MainSummary(c *values.Catalog) string {
	terms := head(c.Tokens(values.KindTerms), MaxSummaryTokens)
	principles := head(c.Tokens(values.KindPrinciples), MaxSummaryTokens)
	return fmt.Sprintf("Terms: %s\nPrinciples: %s", strings.Join(terms, ", "), strings.Join(principles, ", "))
}

// RenderDiscussions renders at most MaxDiscussions entries with their phase and tally.
// The store returns discussions newest-updated first; the rest are omitted.
func RenderDiscussions(discussions []types.Discussion) string {
	var sb strings.Builder
	for _, d := range discussions[:min(len(discussions), MaxDiscussions)] {
		phase := deliberation.Classify(d)
		tally := deliberation.Tally(d)

		fmt.Fprintf(&sb, "\n### #%d [%s] %s\n", d.Number, phase, clip(d.Title, TitleLimit))
		fmt.Fprintf(&sb, "Author: %s | Votes: %dA/%dR\n", d.Author, tally.Approve, tally.Reject)
		fmt.Fprintf(&sb, "Body: %s...\n", clip(d.Body, BodyLimit))

		recent := d.Comments
		if len(recent) > MaxRenderedComments {
			recent = recent[len(recent)-MaxRenderedComments:]
		}
		for _, c := range recent {
			fmt.Fprintf(&sb, "- @%s: %s...\n", c.Author, clip(c.Body, CommentLimit))
		}
	}
	return sb.String()
}

func rules(mode types.Mode) string {
	lines := []string{
		"1. You can " + actionList(", ", ", or "),
		"2. Proposals MUST include **PROPOSED DEFINITION** with JSON",
		"3. Votes use format: **VOTE: APPROVE** or **VOTE: REJECT**",
		"4. Only reference @terms that exist in MAIN REPO",
		"5. Your fork values motivate WHY, but definitions use shared terms",
	}
	if mode != "" && mode != types.ModeAuto {
		allowed := make([]string, 0, len(mode.AllowedActions()))
		for _, a := range mode.AllowedActions() {
			allowed = append(allowed, string(a))
		}
		lines = append(lines, fmt.Sprintf("6. MODE %s: you may only choose %s", mode, strings.Join(allowed, " or ")))
	}
	return strings.Join(lines, "\n")
}

func actionList(sep, last string) string {
	names := make([]string, len(types.AllActions))
	for i, a := range types.AllActions {
		names[i] = string(a)
	}
	return strings.Join(names[:len(names)-1], sep) + last + names[len(names)-1]
}

var responseContract = `{
  "reasoning": "Why you chose this action",
  "action": "` + actionList("|", "|") + `",
  "target_discussion_id": "discussion node ID if responding",
  "target_number": discussion number if responding,
  "title": "Title if creating proposal",
  "content": "Full content to post",
  "vote": "APPROVE|REJECT|ABSTAIN if voting"
}`

// clip is a fixed-length character cut with no ellipsis.
func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func head(tokens []string, n int) []string {
	if len(tokens) > n {
		return tokens[:n]
	}
	return tokens
}
