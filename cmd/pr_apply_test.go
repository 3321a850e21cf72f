package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/rangeid/bbctl/internal/bitbucket"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBitbucket implements bitbucket.Bitbucket for command tests.
type mockBitbucket struct {
	createBranchFn      func(spec bitbucket.BranchSpec) error
	deleteBranchFn      func(name string) error
	listPullRequestsFn  func(title string) ([]bitbucket.PullRequestRecord, error)
	findPullRequestFn   func(title, sourceRef, destRef string) (*bitbucket.PullRequestRecord, error)
	createPullRequestFn func(spec bitbucket.PullRequestSpec) error
	approveFn           func(id int, author string) error
	mergeFn             func(id, version int) error
	deletePRFn          func(id, version int) error
}

func (m *mockBitbucket) CreateBranch(_ context.Context, spec bitbucket.BranchSpec) error {
	if m.createBranchFn != nil {
		return m.createBranchFn(spec)
	}
	return nil
}

func (m *mockBitbucket) DeleteBranch(_ context.Context, name string) error {
	if m.deleteBranchFn != nil {
		return m.deleteBranchFn(name)
	}
	return nil
}

func (m *mockBitbucket) ListPullRequests(_ context.Context, title string) ([]bitbucket.PullRequestRecord, error) {
	if m.listPullRequestsFn != nil {
		return m.listPullRequestsFn(title)
	}
	return nil, nil
}

func (m *mockBitbucket) FindPullRequest(_ context.Context, title, sourceRef, destRef string) (*bitbucket.PullRequestRecord, error) {
	if m.findPullRequestFn != nil {
		return m.findPullRequestFn(title, sourceRef, destRef)
	}
	return nil, nil
}

func (m *mockBitbucket) CreatePullRequest(_ context.Context, spec bitbucket.PullRequestSpec) error {
	if m.createPullRequestFn != nil {
		return m.createPullRequestFn(spec)
	}
	return nil
}

func (m *mockBitbucket) ApprovePullRequest(_ context.Context, id int, author string) error {
	if m.approveFn != nil {
		return m.approveFn(id, author)
	}
	return nil
}

func (m *mockBitbucket) MergePullRequest(_ context.Context, id, version int) error {
	if m.mergeFn != nil {
		return m.mergeFn(id, version)
	}
	return nil
}

func (m *mockBitbucket) DeletePullRequest(_ context.Context, id, version int) error {
	if m.deletePRFn != nil {
		return m.deletePRFn(id, version)
	}
	return nil
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

func setPRApplyFlags(t *testing.T, title, from, to string, actions []string, ignoreExisting bool) {
	t.Helper()
	prApplyTitleFlag = title
	prApplyDescriptionFlag = ""
	prApplyFromFlag = from
	prApplyToFlag = to
	prApplyAuthorFlag = "Release Bot"
	prApplyActionsFlag = actions
	prApplyIgnoreExisting = ignoreExisting
	prApplyDeleteExisting = false
	t.Cleanup(func() {
		prApplyTitleFlag = ""
		prApplyDescriptionFlag = ""
		prApplyFromFlag = ""
		prApplyToFlag = ""
		prApplyAuthorFlag = ""
		prApplyActionsFlag = nil
		prApplyIgnoreExisting = false
		prApplyDeleteExisting = false
	})
}

func openReleaseRecord() *bitbucket.PullRequestRecord {
	return &bitbucket.PullRequestRecord{
		ID:              42,
		Version:         7,
		State:           bitbucket.StateOpen,
		Title:           "Release 1.2",
		SourceDisplayID: "release/1.2",
		DestDisplayID:   "master",
	}
}

func TestPRApply_ApproveAndMerge(t *testing.T) {
	setPRApplyFlags(t, "Release 1.2", "release/1.2", "master", []string{"approve", "merge"}, false)

	var approvedID int
	var mergedVersion int
	mock := &mockBitbucket{
		findPullRequestFn: func(title, sourceRef, destRef string) (*bitbucket.PullRequestRecord, error) {
			assert.Equal(t, "Release 1.2", title)
			assert.Equal(t, "release/1.2", sourceRef)
			assert.Equal(t, "master", destRef)
			return openReleaseRecord(), nil
		},
		approveFn: func(id int, author string) error {
			approvedID = id
			assert.Equal(t, "Release Bot", author)
			return nil
		},
		mergeFn: func(id, version int) error {
			mergedVersion = version
			return nil
		},
	}

	cmd, stdout, _ := newTestCommand()
	err := runPRApplyWithDeps(cmd, nil, &cmdDeps{bb: mock})

	require.NoError(t, err)
	assert.Equal(t, 42, approvedID)
	assert.Equal(t, 7, mergedVersion)
	assert.Equal(t, "changed: true\n", stdout.String())
}

func TestPRApply_NoMatchReportsChangedFalse(t *testing.T) {
	setPRApplyFlags(t, "Release 1.2", "release/1.2", "master", []string{"merge"}, false)

	mock := &mockBitbucket{
		findPullRequestFn: func(string, string, string) (*bitbucket.PullRequestRecord, error) {
			return nil, nil
		},
	}

	cmd, stdout, _ := newTestCommand()
	err := runPRApplyWithDeps(cmd, nil, &cmdDeps{bb: mock})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to find a PR that matches title <Release 1.2>")
	assert.Equal(t, "changed: false\n", stdout.String())
}

func TestPRApply_ChangedStaysTrueOnLateFailure(t *testing.T) {
	setPRApplyFlags(t, "Release 1.2", "release/1.2", "master", []string{"create", "merge"}, false)

	mock := &mockBitbucket{
		findPullRequestFn: func(string, string, string) (*bitbucket.PullRequestRecord, error) {
			return nil, nil // created out-of-band lookup fails
		},
	}

	cmd, stdout, _ := newTestCommand()
	err := runPRApplyWithDeps(cmd, nil, &cmdDeps{bb: mock})

	require.Error(t, err)
	assert.Equal(t, "changed: true\n", stdout.String())
}

func TestPRApply_InvalidAction(t *testing.T) {
	setPRApplyFlags(t, "Release 1.2", "release/1.2", "master", []string{"destroy"}, false)

	cmd, _, _ := newTestCommand()
	err := runPRApplyWithDeps(cmd, nil, &cmdDeps{bb: &mockBitbucket{}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestPRApply_AliasFlagEnablesConflictHandling(t *testing.T) {
	setPRApplyFlags(t, "Release 1.2", "release/1.2", "master", []string{"create"}, false)
	prApplyDeleteExisting = true

	var gotSpec bitbucket.PullRequestSpec
	mock := &mockBitbucket{
		createPullRequestFn: func(spec bitbucket.PullRequestSpec) error {
			gotSpec = spec
			return nil
		},
	}

	cmd, _, _ := newTestCommand()
	err := runPRApplyWithDeps(cmd, nil, &cmdDeps{bb: mock})

	require.NoError(t, err)
	assert.True(t, gotSpec.IgnoreExistingOnCreate)
}
