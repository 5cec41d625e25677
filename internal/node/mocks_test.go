package node

import (
	"context"

	"dahaonode/internal/types"
)

// MockStore serves a fixed discussion list and records writes.
type MockStore struct {
	Discussions []types.Discussion
	ListErr     error
	WriteErr    error

	ListLimit  int
	Comments   map[string][]string
	Created    []string
	Categories []string
}

func (m *MockStore) ListRecent(ctx context.Context, limit int) ([]types.Discussion, error) {
	m.ListLimit = limit
	return m.Discussions, m.ListErr
}

func (m *MockStore) PostComment(ctx context.Context, discussionID, body string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	if m.Comments == nil {
		m.Comments = make(map[string][]string)
	}
	m.Comments[discussionID] = append(m.Comments[discussionID], body)
	return nil
}

func (m *MockStore) CreateDiscussion(ctx context.Context, title, body, category string) (*types.CreatedDiscussion, error) {
	if m.WriteErr != nil {
		return nil, m.WriteErr
	}
	m.Created = append(m.Created, title)
	m.Categories = append(m.Categories, category)
	return &types.CreatedDiscussion{ID: "D_new", Number: len(m.Created) + 100}, nil
}

func (m *MockStore) writes() int {
	n := len(m.Created)
	for _, c := range m.Comments {
		n += len(c)
	}
	return n
}

// MockOracle returns a canned reply and keeps the prompt it saw.
type MockOracle struct {
	Reply  string
	Err    error
	Prompt string
	Calls  int
}

func (m *MockOracle) Complete(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	m.Prompt = prompt
	return m.Reply, m.Err
}
