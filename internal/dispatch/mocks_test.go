package dispatch

import (
	"context"
	"sync"

	"dahaonode/internal/types"
)

type postedComment struct {
	DiscussionID string
	Body         string
}

type createdProposal struct {
	Title    string
	Body     string
	Category string
}

// MockStore records every store call.
type MockStore struct {
	mu        sync.Mutex
	Comments  []postedComment
	Proposals []createdProposal
	Listed    int
	Err       error
}

func (m *MockStore) ListRecent(ctx context.Context, limit int) ([]types.Discussion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Listed++
	return nil, m.Err
}

func (m *MockStore) PostComment(ctx context.Context, discussionID, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Comments = append(m.Comments, postedComment{DiscussionID: discussionID, Body: body})
	return m.Err
}

func (m *MockStore) CreateDiscussion(ctx context.Context, title, body, category string) (*types.CreatedDiscussion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Proposals = append(m.Proposals, createdProposal{Title: title, Body: body, Category: category})
	if m.Err != nil {
		return nil, m.Err
	}
	return &types.CreatedDiscussion{ID: "D_new", Number: 42, URL: "https://github.com/o/n/discussions/42"}, nil
}

func (m *MockStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Listed + len(m.Comments) + len(m.Proposals)
}
