package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	clog "github.com/charmbracelet/log"
)

// ListPageLimit is the page size requested from the list endpoint. Only
// the first page is consulted; pull requests beyond it are invisible to
// the finder.
const ListPageLimit = 1000

// Client implements Bitbucket against a single repository on one server.
type Client struct {
	log       *clog.Logger
	transport Transport
	target    Target
	username  string // for access-denied messages only, never the secret
}

var _ Bitbucket = &Client{}

// New creates a Client for the target, authenticating every request with
// the credential and bounding every call with the timeout. The target is
// validated before any network call: a non-https server URL is rejected
// here.
func New(target Target, cred Credential, timeout time.Duration) (*Client, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		log:       clog.Default().WithPrefix("bitbucket"),
		transport: NewTransport(cred, timeout),
		target:    target,
		username:  cred.Username,
	}, nil
}

// NewWithTransport creates a Client on a caller-supplied transport.
func NewWithTransport(target Target, transport Transport, username string) (*Client, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		log:       clog.Default().WithPrefix("bitbucket"),
		transport: transport,
		target:    target,
		username:  username,
	}, nil
}

// branchesURL is the branch-utils endpoint used for both branch creation
// and deletion.
func (c *Client) branchesURL() string {
	return fmt.Sprintf("%s/rest/branch-utils/1.0/projects/%s/repos/%s/branches",
		c.target.ServerURL, c.target.ProjectKey, c.target.RepositorySlug)
}

func (c *Client) pullRequestsURL() string {
	return fmt.Sprintf("%s/rest/api/1.0/projects/%s/repos/%s/pull-requests",
		c.target.ServerURL, c.target.ProjectKey, c.target.RepositorySlug)
}

func (c *Client) pullRequestURL(id int, suffix string) string {
	return fmt.Sprintf("%s/rest/api/latest/projects/%s/repos/%s/pull-requests/%d%s",
		c.target.ServerURL, c.target.ProjectKey, c.target.RepositorySlug, id, suffix)
}

func (c *Client) listURL(title string) string {
	return fmt.Sprintf("%s/rest/api/latest/projects/%s/repos/%s/pull-requests?filterText=%s&limit=%d",
		c.target.ServerURL, c.target.ProjectKey, c.target.RepositorySlug,
		url.QueryEscape(title), ListPageLimit)
}

func (c *Client) CreateBranch(ctx context.Context, spec BranchSpec) error {
	startPoint := spec.StartPoint
	if startPoint == "" {
		startPoint = "master"
	}

	resp, err := c.transport.Do(ctx, Request{
		Method: "POST",
		URL:    c.branchesURL(),
		Body: map[string]string{
			"name":       spec.Name,
			"startPoint": startPoint,
		},
	})
	if err := decode(resp, err, c.username, 200, 201); err != nil {
		return fmt.Errorf("error creating new branch: %w", err)
	}

	c.log.Debug("branch created", "name", spec.Name, "startPoint", startPoint)
	return nil
}

func (c *Client) DeleteBranch(ctx context.Context, name string) error {
	resp, err := c.transport.Do(ctx, Request{
		Method: "DELETE",
		URL:    c.branchesURL(),
		Body:   map[string]string{"name": name},
	})
	if err := decode(resp, err, c.username, 204); err != nil {
		return fmt.Errorf("error deleting branch: %w", err)
	}

	c.log.Debug("branch deleted", "name", name)
	return nil
}

// pullRequestPage is the envelope of the paged list endpoint.
type pullRequestPage struct {
	Values []pullRequestJSON `json:"values"`
}

type refJSON struct {
	ID        string `json:"id"`
	DisplayID string `json:"displayId"`
}

type pullRequestJSON struct {
	ID          int     `json:"id"`
	Version     int     `json:"version"`
	State       string  `json:"state"`
	Title       string  `json:"title"`
	CreatedDate int64   `json:"createdDate"` // epoch milliseconds
	FromRef     refJSON `json:"fromRef"`
	ToRef       refJSON `json:"toRef"`
}

func (p pullRequestJSON) toRecord() PullRequestRecord {
	return PullRequestRecord{
		ID:              p.ID,
		Version:         p.Version,
		State:           PullRequestState(p.State),
		Title:           p.Title,
		SourceDisplayID: p.FromRef.DisplayID,
		DestDisplayID:   p.ToRef.DisplayID,
		CreatedAt:       time.UnixMilli(p.CreatedDate),
	}
}

func (c *Client) ListPullRequests(ctx context.Context, title string) ([]PullRequestRecord, error) {
	resp, err := c.transport.Do(ctx, Request{
		Method: "GET",
		URL:    c.listURL(title),
	})
	if err := decode(resp, err, c.username, 200); err != nil {
		return nil, fmt.Errorf("error listing pull requests: %w", err)
	}

	var page pullRequestPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, &OpError{
			Kind:    KindMalformedResponse,
			Message: fmt.Sprintf("failed to parse pull request list: %v", err),
			Status:  resp.Status,
			cause:   err,
		}
	}

	records := make([]PullRequestRecord, len(page.Values))
	for i, v := range page.Values {
		records[i] = v.toRecord()
	}
	return records, nil
}

func (c *Client) CreatePullRequest(ctx context.Context, spec PullRequestSpec) error {
	ref := func(branch string) map[string]any {
		return map[string]any{
			"id": branch,
			"repository": map[string]any{
				"slug": c.target.RepositorySlug,
				"project": map[string]any{
					"key": c.target.ProjectKey,
				},
			},
		}
	}

	resp, err := c.transport.Do(ctx, Request{
		Method: "POST",
		URL:    c.pullRequestsURL(),
		Body: map[string]any{
			"title":       spec.Title,
			"description": spec.Description,
			"fromRef":     ref(spec.SourceRef),
			"toRef":       ref(spec.DestRef),
			"locked":      false,
		},
	})
	if err := decode(resp, err, c.username, 201); err != nil {
		return fmt.Errorf("unable to create the pull request: %w", err)
	}

	c.log.Info("pull request created", "title", spec.Title, "from", spec.SourceRef, "to", spec.DestRef)
	return nil
}

func (c *Client) ApprovePullRequest(ctx context.Context, id int, author string) error {
	resp, err := c.transport.Do(ctx, Request{
		Method: "POST",
		URL:    c.pullRequestURL(id, "/approve"),
		Body: map[string]any{
			"user":     map[string]string{"name": author},
			"approved": true,
			"status":   "APPROVED",
		},
	})
	if err := decode(resp, err, c.username, 200, 201); err != nil {
		return fmt.Errorf("error approving pull request: %w", err)
	}

	c.log.Info("pull request approved", "id", id, "author", author)
	return nil
}

func (c *Client) MergePullRequest(ctx context.Context, id, version int) error {
	resp, err := c.transport.Do(ctx, Request{
		Method: "POST",
		URL:    fmt.Sprintf("%s/rest/api/1.0/projects/%s/repos/%s/pull-requests/%d/merge",
			c.target.ServerURL, c.target.ProjectKey, c.target.RepositorySlug, id),
		Body: map[string]int{"version": version},
	})
	if err := decode(resp, err, c.username, 200); err != nil {
		// A 409 here is a merge conflict, not the create-conflict; the
		// remote message is preserved verbatim by the decoder.
		return fmt.Errorf("unable to merge the pull request #%d: %w", id, err)
	}

	c.log.Info("pull request merged", "id", id, "version", version)
	return nil
}

func (c *Client) DeletePullRequest(ctx context.Context, id, version int) error {
	resp, err := c.transport.Do(ctx, Request{
		Method: "DELETE",
		URL:    c.pullRequestURL(id, ""),
		Body:   map[string]int{"version": version},
	})
	if err == nil && resp.Status == 404 {
		return &OpError{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("pull request #%d doesn't exist", id),
			Status:  resp.Status,
		}
	}
	if err := decode(resp, err, c.username, 204); err != nil {
		return fmt.Errorf("error deleting pull request #%d: %w", id, err)
	}

	c.log.Info("pull request deleted", "id", id, "version", version)
	return nil
}
