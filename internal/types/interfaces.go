package types

import (
	"context"
)

// LLMClient defines the interface for text-generation providers.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DiscussionStore is the threaded-discussion backend the node reads from and acts on.
type DiscussionStore interface {
	// ListRecent returns up to limit discussions, most recently updated first.
	ListRecent(ctx context.Context, limit int) ([]Discussion, error)
	// PostComment adds a comment to an existing discussion.
	PostComment(ctx context.Context, discussionID, body string) error
	// CreateDiscussion opens a new discussion under the named category.
	CreateDiscussion(ctx context.Context, title, body, category string) (*CreatedDiscussion, error)
}
