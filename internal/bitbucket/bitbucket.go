package bitbucket

import "context"

// Bitbucket is the operations surface consumed by the commands and the
// reconciler.
type Bitbucket interface {

	// CreateBranch creates a branch from its start point. Creating a
	// branch that already exists is a remote rejection, not a no-op.
	CreateBranch(ctx context.Context, spec BranchSpec) error

	// DeleteBranch deletes a branch by name. Deleting a branch that does
	// not exist is a remote rejection, not a no-op.
	DeleteBranch(ctx context.Context, name string) error

	// ListPullRequests returns the first page of pull requests whose
	// title contains the given text.
	ListPullRequests(ctx context.Context, title string) ([]PullRequestRecord, error)

	// FindPullRequest resolves exactly one OPEN pull request matching
	// title, source and destination. Returns nil when nothing matches.
	FindPullRequest(ctx context.Context, title, sourceRef, destRef string) (*PullRequestRecord, error)

	// CreatePullRequest creates a pull request from the spec. A 409
	// conflict surfaces as a RemoteRejected error carrying the existing
	// pull request's id and version.
	CreatePullRequest(ctx context.Context, spec PullRequestSpec) error

	// ApprovePullRequest records an approval on behalf of the named
	// author.
	ApprovePullRequest(ctx context.Context, id int, author string) error

	// MergePullRequest merges the pull request at the given version.
	MergePullRequest(ctx context.Context, id, version int) error

	// DeletePullRequest deletes the pull request at the given version.
	DeletePullRequest(ctx context.Context, id, version int) error
}
