package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// CreateComment posts a new comment on an issue.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, issue int, body string) (*Comment, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var comment Comment
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseURL, owner, repo, issue)
	if err := c.Do(ctx, http.MethodPost, url, commentRequest{Body: body}, &comment); err != nil {
		return nil, fmt.Errorf("create comment on %s/%s#%d: %w", owner, repo, issue, err)
	}
	return &comment, nil
}

// UpdateComment replaces the body of an existing issue comment.
func (c *Client) UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) (*Comment, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var comment Comment
	url := fmt.Sprintf("%s/repos/%s/%s/issues/comments/%d", c.baseURL, owner, repo, commentID)
	if err := c.Do(ctx, http.MethodPatch, url, commentRequest{Body: body}, &comment); err != nil {
		return nil, fmt.Errorf("update comment %d on %s/%s: %w", commentID, owner, repo, err)
	}
	return &comment, nil
}

// ListComments lists the comments on an issue, oldest first. Results are
// paginated automatically.
func (c *Client) ListComments(ctx context.Context, owner, repo string, issue int) ([]Comment, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var all []Comment
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=100&page=%d", c.baseURL, owner, repo, issue, page)

		var comments []Comment
		if err := c.Get(ctx, url, &comments); err != nil {
			return nil, fmt.Errorf("list comments on %s/%s#%d: %w", owner, repo, issue, err)
		}
		all = append(all, comments...)
		if len(comments) < 100 {
			break
		}
	}
	return all, nil
}

// FindCommentByMarker returns the first comment on an issue whose body
// contains marker, or nil if none exists. BountyHub embeds an invisible
// HTML marker in its status comments so it can update the same comment
// instead of posting duplicates.
func (c *Client) FindCommentByMarker(ctx context.Context, owner, repo string, issue int, marker string) (*Comment, error) {
	comments, err := c.ListComments(ctx, owner, repo, issue)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if strings.Contains(comments[i].Body, marker) {
			return &comments[i], nil
		}
	}
	return nil, nil
}

// UpsertComment updates the comment containing marker if one exists,
// otherwise creates a new comment. This is the primitive the bounty
// service uses to keep exactly one status comment per bountied issue.
func (c *Client) UpsertComment(ctx context.Context, owner, repo string, issue int, marker, body string) (*Comment, error) {
	existing, err := c.FindCommentByMarker(ctx, owner, repo, issue, marker)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return c.UpdateComment(ctx, owner, repo, existing.ID, body)
	}
	return c.CreateComment(ctx, owner, repo, issue, body)
}
