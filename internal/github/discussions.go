package github

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dahaonode/internal/types"
)

const (
	// DefaultListLimit is the number of discussions fetched per run.
	DefaultListLimit = 20
	// CommentsPerDiscussion is the number of comments fetched per discussion.
	CommentsPerDiscussion = 50
)

const categoryLimit = 20

const repoInfoQuery = `
query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    id
    discussionCategories(first: 20) {
      nodes { id name }
    }
  }
}`

const listDiscussionsQuery = `
query($owner: String!, $name: String!, $first: Int!, $comments: Int!) {
  repository(owner: $owner, name: $name) {
    discussions(first: $first, orderBy: {field: UPDATED_AT, direction: DESC}) {
      nodes {
        id
        number
        title
        author { login }
        body
        createdAt
        comments(first: $comments) {
          nodes {
            body
            author { login }
          }
        }
      }
    }
  }
}`

const addCommentMutation = `
mutation($discussionId: ID!, $body: String!) {
  addDiscussionComment(input: {discussionId: $discussionId, body: $body}) {
    comment { id }
  }
}`

const createDiscussionMutation = `
mutation($repoId: ID!, $categoryId: ID!, $title: String!, $body: String!) {
  createDiscussion(input: {repositoryId: $repoId, categoryId: $categoryId, title: $title, body: $body}) {
    discussion { id number url }
  }
}`

type actor struct {
	Login string `json:"login"`
}

// login maps a deleted or ghost author to the placeholder name.
func login(a *actor) string {
	if a == nil || a.Login == "" {
		return types.UnknownAuthor
	}
	return a.Login
}

// ensureRepoInfo loads the repository id and categories once per client.
// A failed attempt is not cached.
func (c *Client) ensureRepoInfo(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.repoID != "" {
		return nil
	}

	var data struct {
		Repository *struct {
			ID                   string `json:"id"`
			DiscussionCategories struct {
				Nodes []Category `json:"nodes"`
			} `json:"discussionCategories"`
		} `json:"repository"`
	}
	if err := c.do(ctx, repoInfoQuery, map[string]any{"owner": c.owner, "name": c.name}, &data); err != nil {
		return fmt.Errorf("failed to fetch repository info: %w", err)
	}
	if data.Repository == nil || data.Repository.ID == "" {
		return fmt.Errorf("%w: repository %s not found", ErrGraphQL, c.Repo())
	}

	c.repoID = data.Repository.ID
	c.categories = data.Repository.DiscussionCategories.Nodes
	if len(c.categories) > categoryLimit {
		c.categories = c.categories[:categoryLimit]
	}
	c.logger.Info("Connected to repository",
		zap.String("repo", c.Repo()),
		zap.Int("categories", len(c.categories)))
	return nil
}

// Categories returns the cached categories in API order.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	if err := c.ensureRepoInfo(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out, nil
}

// resolveCategory picks the category by exact name, else the first one.
// It also returns the cached repository id.
func (c *Client) resolveCategory(name string) (string, Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cat := range c.categories {
		if cat.Name == name {
			return c.repoID, cat, nil
		}
	}
	if len(c.categories) == 0 {
		return c.repoID, Category{}, ErrNoCategories
	}
	return c.repoID, c.categories[0], nil
}

// ListRecent returns up to limit discussions, most recently updated first.
func (c *Client) ListRecent(ctx context.Context, limit int) ([]types.Discussion, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	// Repository info is only needed for writes; listing proceeds without it.
	if err := c.ensureRepoInfo(ctx); err != nil {
		c.logger.Warn("Repository info unavailable", zap.Error(err))
	}

	var data struct {
		Repository *struct {
			Discussions struct {
				Nodes []struct {
					ID        string    `json:"id"`
					Number    int       `json:"number"`
					Title     string    `json:"title"`
					Author    *actor    `json:"author"`
					Body      string    `json:"body"`
					CreatedAt time.Time `json:"createdAt"`
					Comments  struct {
						Nodes []struct {
							Body   string `json:"body"`
							Author *actor `json:"author"`
						} `json:"nodes"`
					} `json:"comments"`
				} `json:"nodes"`
			} `json:"discussions"`
		} `json:"repository"`
	}
	vars := map[string]any{
		"owner":    c.owner,
		"name":     c.name,
		"first":    limit,
		"comments": CommentsPerDiscussion,
	}
	if err := c.do(ctx, listDiscussionsQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to list discussions: %w", err)
	}
	if data.Repository == nil {
		return nil, fmt.Errorf("%w: repository %s not found", ErrGraphQL, c.Repo())
	}

	nodes := data.Repository.Discussions.Nodes
	discussions := make([]types.Discussion, 0, len(nodes))
	for _, n := range nodes {
		d := types.Discussion{
			ID:        n.ID,
			Number:    n.Number,
			Title:     n.Title,
			Author:    login(n.Author),
			Body:      n.Body,
			CreatedAt: n.CreatedAt,
			Comments:  make([]types.Comment, 0, len(n.Comments.Nodes)),
		}
		for _, cm := range n.Comments.Nodes {
			d.Comments = append(d.Comments, types.Comment{Author: login(cm.Author), Body: cm.Body})
		}
		discussions = append(discussions, d)
	}
	return discussions, nil
}

// PostComment adds a comment to the discussion with the given node id.
func (c *Client) PostComment(ctx context.Context, discussionID, body string) error {
	var data struct {
		AddDiscussionComment *struct {
			Comment struct {
				ID string `json:"id"`
			} `json:"comment"`
		} `json:"addDiscussionComment"`
	}
	vars := map[string]any{"discussionId": discussionID, "body": body}
	if err := c.do(ctx, addCommentMutation, vars, &data); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}
	if data.AddDiscussionComment == nil {
		return fmt.Errorf("%w: comment not created", ErrGraphQL)
	}
	c.logger.Info("Posted comment",
		zap.String("discussion_id", discussionID),
		zap.String("comment_id", data.AddDiscussionComment.Comment.ID))
	return nil
}

// CreateDiscussion opens a discussion in the named category, falling back to
// the first category the repository lists.
func (c *Client) CreateDiscussion(ctx context.Context, title, body, category string) (*types.CreatedDiscussion, error) {
	if err := c.ensureRepoInfo(ctx); err != nil {
		return nil, err
	}
	repoID, cat, err := c.resolveCategory(category)
	if err != nil {
		c.logger.Error("No discussion categories found", zap.String("repo", c.Repo()))
		return nil, err
	}
	if cat.Name != category {
		c.logger.Warn("Category not found, using first available",
			zap.String("requested", category),
			zap.String("used", cat.Name))
	}

	var data struct {
		CreateDiscussion *struct {
			Discussion types.CreatedDiscussion `json:"discussion"`
		} `json:"createDiscussion"`
	}
	vars := map[string]any{
		"repoId":     repoID,
		"categoryId": cat.ID,
		"title":      title,
		"body":       body,
	}
	if err := c.do(ctx, createDiscussionMutation, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to create discussion: %w", err)
	}
	if data.CreateDiscussion == nil {
		return nil, fmt.Errorf("%w: discussion not created", ErrGraphQL)
	}

	created := data.CreateDiscussion.Discussion
	c.logger.Info("Created discussion",
		zap.Int("number", created.Number),
		zap.String("url", created.URL))
	return &created, nil
}

var _ types.DiscussionStore = (*Client)(nil)
