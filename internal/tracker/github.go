package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// GitHubClient maps tickets onto repository issues. Every ticket kind becomes
// a labelled issue; parent links are recorded as a reference line at the top
// of the issue body, since issues have no native hierarchy.
type GitHubClient struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubClient creates a GitHub-backed tracker client for one repository.
func NewGitHubClient(ctx context.Context, token, owner, repo string) *GitHubClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &GitHubClient{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}
}

// TestConnection verifies the token by fetching the authenticated user.
func (c *GitHubClient) TestConnection(ctx context.Context) error {
	_, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return classifyGitHubError(err)
	}
	return nil
}

// ListProjects returns the configured repository as the single creation
// target. Issue creation is scoped to one repository per run.
func (c *GitHubClient) ListProjects(ctx context.Context) ([]Project, error) {
	repo, _, err := c.client.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		return nil, classifyGitHubError(err)
	}
	return []Project{{
		Key:  c.owner + "/" + c.repo,
		Name: repo.GetFullName(),
		Type: "repository",
	}}, nil
}

// CreateIssue creates a labelled issue. The ticket kind becomes a label and
// the parent, when present, is referenced in the body.
func (c *GitHubClient) CreateIssue(ctx context.Context, req CreateIssueRequest) (*Issue, error) {
	body := req.Description
	if req.ParentRemoteID != "" {
		ref := req.ParentRemoteID
		if !strings.HasPrefix(ref, "#") {
			ref = "#" + ref
		}
		body = fmt.Sprintf("Parent: %s\n\n%s", ref, body)
	}

	issue, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, &github.IssueRequest{
		Title:  github.String(req.Title),
		Body:   github.String(body),
		Labels: &[]string{strings.ToLower(string(req.Kind))},
	})
	if err != nil {
		return nil, classifyGitHubError(err)
	}

	return &Issue{
		RemoteID: strconv.Itoa(issue.GetNumber()),
		URL:      issue.GetHTMLURL(),
	}, nil
}

// IssueURL returns the browse URL for an issue number.
func (c *GitHubClient) IssueURL(remoteID string) string {
	return fmt.Sprintf("https://github.com/%s/%s/issues/%s", c.owner, c.repo, remoteID)
}

func classifyGitHubError(err error) *RemoteError {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RemoteError{Kind: FaultTransient, Message: "rate limited", Err: err}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RemoteError{Kind: FaultTransient, Message: "secondary rate limit", Err: err}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return &RemoteError{
			Kind:    classifyStatus(respErr.Response.StatusCode),
			Status:  respErr.Response.StatusCode,
			Message: respErr.Message,
			Err:     err,
		}
	}

	return &RemoteError{Kind: FaultTransient, Message: err.Error(), Err: err}
}
