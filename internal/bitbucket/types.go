package bitbucket

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Target identifies one repository on a Bitbucket Server (Data Center)
// instance. It is immutable for the duration of one invocation.
type Target struct {
	ServerURL      string // https://<server> or https://<server>/<context>
	ProjectKey     string
	RepositorySlug string
}

// Validate checks the target before any network call is made.
// The server URL must use https; plain http is rejected outright.
func (t Target) Validate() error {
	if !strings.HasPrefix(t.ServerURL, "https://") {
		return errors.New("server must be https://<servername>")
	}
	if t.ProjectKey == "" {
		return errors.New("project key is required")
	}
	if t.RepositorySlug == "" {
		return errors.New("repository slug is required")
	}
	return nil
}

// Credential is a username/password pair for basic auth. It is opaque to
// the engine beyond being embedded in the Authorization header and must
// never appear in logs or error messages.
type Credential struct {
	Username string
	Password string
}

// BranchSpec describes a branch to create or delete. StartPoint is only
// used for creation.
type BranchSpec struct {
	Name       string
	StartPoint string // defaults to "master" when empty
}

// Action is one step of a pull request reconciliation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionApprove Action = "approve"
	ActionMerge   Action = "merge"
	ActionDelete  Action = "delete"
)

// actionOrder fixes the evaluation order of requested actions regardless
// of the order they were supplied in.
var actionOrder = map[Action]int{
	ActionCreate:  0,
	ActionApprove: 1,
	ActionMerge:   2,
	ActionDelete:  3,
}

// ParseAction converts a user-supplied action name.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := actionOrder[a]; !ok {
		return "", fmt.Errorf("unknown action %q (valid: create, approve, merge, delete)", s)
	}
	return a, nil
}

// sortActions returns the actions deduplicated and in fixed evaluation
// order: create, approve, merge, delete.
func sortActions(actions []Action) []Action {
	seen := make(map[Action]bool, len(actions))
	var out []Action
	for _, a := range actions {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return actionOrder[out[i]] < actionOrder[out[j]]
	})
	return out
}

// PullRequestSpec is the desired state of one pull request plus the set
// of actions to perform against it. Title is the identity key used to
// look the pull request up on the server.
type PullRequestSpec struct {
	Title       string
	Description string
	SourceRef   string // from-branch
	DestRef     string // to-branch
	Author      string // display name used as the approval identity

	Actions []Action

	// IgnoreExistingOnCreate controls the create-conflict path: when a
	// create hits a 409 because an equivalent pull request already
	// exists, the conflicting pull request is deleted and the create is
	// retried once. Without the flag the conflict is a fatal error.
	IgnoreExistingOnCreate bool
}

// Validate checks the spec before reconciliation starts.
func (s PullRequestSpec) Validate() error {
	if s.Title == "" {
		return errors.New("title is required")
	}
	if len(s.Actions) == 0 {
		return errors.New("at least one action is required")
	}
	if s.SourceRef == "" {
		return errors.New("source branch is required")
	}
	if s.DestRef == "" {
		return errors.New("destination branch is required")
	}
	return nil
}

// PullRequestState is the lifecycle state reported by the server.
type PullRequestState string

const (
	StateOpen     PullRequestState = "OPEN"
	StateMerged   PullRequestState = "MERGED"
	StateDeclined PullRequestState = "DECLINED"
)

// PullRequestRecord is a pull request as reported by the server. It is
// read-only to the engine; Version is the optimistic-concurrency token
// the server requires on merge and delete.
type PullRequestRecord struct {
	ID              int
	Version         int
	State           PullRequestState
	Title           string
	SourceDisplayID string
	DestDisplayID   string
	CreatedAt       time.Time
}

// Result is the caller-facing outcome of an invocation. Changed is true
// iff at least one mutating request returned a success status; read-only
// lookups never set it.
type Result struct {
	Changed bool
}
