package bitbucket

import (
	"context"
	"errors"
	"fmt"

	clog "github.com/charmbracelet/log"
)

// Reconciler drives a pull request toward the desired state described by
// a PullRequestSpec. Requested actions are evaluated in fixed order:
// create, approve, merge, delete. Actions are independent; the first one
// that fails stops the run, and Result.Changed reports truthfully what
// already happened before the failure.
type Reconciler struct {
	log *clog.Logger
	bb  Bitbucket
}

// NewReconciler creates a Reconciler over the given operations surface.
func NewReconciler(bb Bitbucket) *Reconciler {
	return &Reconciler{
		log: clog.Default().WithPrefix("reconcile"),
		bb:  bb,
	}
}

// Apply performs the spec's requested actions. The returned Result is
// valid even when err is non-nil: Changed stays true if an earlier
// action already mutated remote state.
func (r *Reconciler) Apply(ctx context.Context, spec PullRequestSpec) (Result, error) {
	var res Result

	if err := spec.Validate(); err != nil {
		return res, err
	}

	for _, action := range sortActions(spec.Actions) {
		var err error
		switch action {
		case ActionCreate:
			err = r.create(ctx, spec, &res)
		case ActionApprove:
			err = r.approve(ctx, spec, &res)
		case ActionMerge:
			err = r.merge(ctx, spec, &res)
		case ActionDelete:
			err = r.delete(ctx, spec, &res)
		}
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// create issues the create request. On a 409 conflict with
// IgnoreExistingOnCreate set, the conflicting pull request reported in
// the error payload is deleted and the create retried exactly once; a
// second conflict is fatal.
func (r *Reconciler) create(ctx context.Context, spec PullRequestSpec, res *Result) error {
	err := r.bb.CreatePullRequest(ctx, spec)
	if err == nil {
		res.Changed = true
		return nil
	}

	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Status != 409 {
		return err
	}
	if !spec.IgnoreExistingOnCreate {
		return err
	}
	if opErr.Existing == nil {
		return fmt.Errorf("conflicting pull request not identified by server: %w", err)
	}

	r.log.Warn("pull request already exists, deleting and recreating",
		"id", opErr.Existing.ID, "version", opErr.Existing.Version)

	if err := r.bb.DeletePullRequest(ctx, opErr.Existing.ID, opErr.Existing.Version); err != nil {
		return err
	}
	res.Changed = true

	if err := r.bb.CreatePullRequest(ctx, spec); err != nil {
		return err
	}
	return nil
}

func (r *Reconciler) approve(ctx context.Context, spec PullRequestSpec, res *Result) error {
	record, err := r.resolve(ctx, spec)
	if err != nil {
		return err
	}
	if err := r.bb.ApprovePullRequest(ctx, record.ID, spec.Author); err != nil {
		return err
	}
	res.Changed = true
	return nil
}

func (r *Reconciler) merge(ctx context.Context, spec PullRequestSpec, res *Result) error {
	record, err := r.resolve(ctx, spec)
	if err != nil {
		return err
	}
	if err := r.bb.MergePullRequest(ctx, record.ID, record.Version); err != nil {
		return err
	}
	res.Changed = true
	return nil
}

func (r *Reconciler) delete(ctx context.Context, spec PullRequestSpec, res *Result) error {
	record, err := r.resolve(ctx, spec)
	if err != nil {
		return err
	}
	if err := r.bb.DeletePullRequest(ctx, record.ID, record.Version); err != nil {
		return err
	}
	res.Changed = true
	return nil
}

// resolve locates the single OPEN pull request matching the spec. The
// engine only ever mutates a pull request it just resolved, and the
// version token attached to merge/delete is the one observed here.
func (r *Reconciler) resolve(ctx context.Context, spec PullRequestSpec) (*PullRequestRecord, error) {
	record, err := r.bb.FindPullRequest(ctx, spec.Title, spec.SourceRef, spec.DestRef)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, notFoundError(spec.Title)
	}
	return record, nil
}
