// Package dispatch carries a parsed decision out against the discussion store.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dahaonode/internal/types"
	"dahaonode/internal/values"
)

var (
	// ErrMissingTarget means a reply or vote named no discussion. No store call is made.
	ErrMissingTarget = errors.New("no target discussion ID")
	// ErrStoreFailure wraps a failed store mutation.
	ErrStoreFailure = errors.New("discussion store failure")
)

const (
	// DefaultTitle is used for proposals the oracle left untitled.
	DefaultTitle = "Untitled Proposal"
	// DefaultCategory is the category new proposals are filed under when none is configured.
	DefaultCategory = "General"

	headerMarker = "MY FORK VALUES"
	headerPin    = "📌"
)

// Header renders the fork-values banner prefixed to everything the node posts.
func Header(delta values.Delta) string {
	return headerPin + " **" + headerMarker + ":**\n" + delta.String() + "\n\n---\n\n"
}

// HasHeader reports whether content already carries the banner.
func HasHeader(content string) bool {
	return strings.Contains(content, headerMarker) || strings.Contains(content, headerPin)
}

// Outcome describes what a dispatch did.
type Outcome struct {
	Action types.Action
	// Mutated is true when the store accepted a write.
	Mutated bool
	// Created is set for a successfully created proposal.
	Created *types.CreatedDiscussion
}

// Dispatcher executes decisions for one fork.
type Dispatcher struct {
	store    types.DiscussionStore
	delta    values.Delta
	category string
	logger   *zap.Logger
}

// New creates a dispatcher posting on behalf of a fork with the given delta.
// Proposals are filed under category, or DefaultCategory when it is blank.
func New(store types.DiscussionStore, delta values.Delta, category string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}
	return &Dispatcher{store: store, delta: delta, category: category, logger: logger}
}

// Category returns the category proposals are filed under.
func (d *Dispatcher) Category() string {
	return d.category
}

// header returns the banner unless the decision content already has one.
func (d *Dispatcher) header(content string) string {
	if HasHeader(content) {
		return ""
	}
	return Header(d.delta)
}

// Dispatch performs at most one store mutation for the decision. It does not retry.
func (d *Dispatcher) Dispatch(ctx context.Context, dec types.Decision) (Outcome, error) {
	out := Outcome{Action: dec.Action}

	if dec.Action.NeedsTarget() && !dec.HasTarget() {
		d.logger.Error("No target discussion ID", zap.String("action", string(dec.Action)))
		return out, ErrMissingTarget
	}

	switch dec.Action {
	case types.ActionCreateProposal:
		title := strings.TrimSpace(dec.Title)
		if title == "" {
			title = DefaultTitle
		}
		created, err := d.store.CreateDiscussion(ctx, title, d.header(dec.Content)+dec.Content, d.category)
		if err != nil {
			d.logger.Error("Failed to create proposal",
				zap.String("title", title),
				zap.String("category", d.category),
				zap.Error(err))
			return out, fmt.Errorf("%w: create discussion: %w", ErrStoreFailure, err)
		}
		out.Mutated = true
		out.Created = created
		if created != nil {
			d.logger.Info("Created proposal", zap.Int("number", created.Number), zap.String("url", created.URL))
		}
		return out, nil

	case types.ActionPostAntithesis, types.ActionPostSynthesis:
		return d.comment(ctx, out, dec, d.header(dec.Content)+dec.Content)

	case types.ActionCastVote:
		vote := dec.Vote
		if strings.TrimSpace(string(vote)) == "" {
			vote = types.VoteAbstain
		}
		body := d.header(dec.Content) + fmt.Sprintf("**VOTE: %s**\n\n*%s*", vote, dec.Reasoning)
		return d.comment(ctx, out, dec, body)

	case types.ActionDoNothing:
		d.logger.Info("Chose to do nothing", zap.String("reasoning", dec.Reasoning))
		return out, nil

	default:
		d.logger.Warn("Unknown action", zap.String("action", string(dec.Action)))
		return out, nil
	}
}

func (d *Dispatcher) comment(ctx context.Context, out Outcome, dec types.Decision, body string) (Outcome, error) {
	if err := d.store.PostComment(ctx, dec.TargetDiscussionID, body); err != nil {
		d.logger.Error("Failed to post comment",
			zap.String("action", string(dec.Action)),
			zap.String("discussion_id", dec.TargetDiscussionID),
			zap.Error(err))
		return out, fmt.Errorf("%w: post comment: %w", ErrStoreFailure, err)
	}
	out.Mutated = true
	fields := []zap.Field{
		zap.String("action", string(dec.Action)),
		zap.String("discussion_id", dec.TargetDiscussionID),
	}
	if dec.TargetNumber != nil {
		fields = append(fields, zap.Int("number", *dec.TargetNumber))
	}
	d.logger.Info("Posted comment", fields...)
	return out, nil
}
