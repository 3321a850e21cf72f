package cmd

import (
	"testing"

	"github.com/rangeid/bbctl/internal/bitbucket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchCreate(t *testing.T) {
	branchCreateFromFlag = "main"
	t.Cleanup(func() { branchCreateFromFlag = "master" })

	var gotSpec bitbucket.BranchSpec
	mock := &mockBitbucket{
		createBranchFn: func(spec bitbucket.BranchSpec) error {
			gotSpec = spec
			return nil
		},
	}

	cmd, stdout, _ := newTestCommand()
	err := runBranchCreateWithDeps(cmd, []string{"feature/x"}, &cmdDeps{bb: mock})

	require.NoError(t, err)
	assert.Equal(t, bitbucket.BranchSpec{Name: "feature/x", StartPoint: "main"}, gotSpec)
	assert.Equal(t, "changed: true\n", stdout.String())
}

func TestBranchCreate_RemoteRejection(t *testing.T) {
	mock := &mockBitbucket{
		createBranchFn: func(bitbucket.BranchSpec) error {
			return &bitbucket.OpError{
				Kind:    bitbucket.KindRemoteRejected,
				Message: "A branch with that name already exists.",
				Status:  409,
			}
		},
	}

	cmd, stdout, _ := newTestCommand()
	err := runBranchCreateWithDeps(cmd, []string{"feature/x"}, &cmdDeps{bb: mock})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, stdout.String())
}

func TestBranchDelete(t *testing.T) {
	var gotName string
	mock := &mockBitbucket{
		deleteBranchFn: func(name string) error {
			gotName = name
			return nil
		},
	}

	cmd, stdout, _ := newTestCommand()
	err := runBranchDeleteWithDeps(cmd, []string{"feature/x"}, &cmdDeps{bb: mock})

	require.NoError(t, err)
	assert.Equal(t, "feature/x", gotName)
	assert.Equal(t, "changed: true\n", stdout.String())
}

func TestBranchDelete_MissingBranchFails(t *testing.T) {
	mock := &mockBitbucket{
		deleteBranchFn: func(string) error {
			return &bitbucket.OpError{
				Kind:    bitbucket.KindRemoteRejected,
				Message: "Branch refs/heads/feature/x not found",
				Status:  404,
			}
		},
	}

	cmd, stdout, _ := newTestCommand()
	err := runBranchDeleteWithDeps(cmd, []string{"feature/x"}, &cmdDeps{bb: mock})

	require.Error(t, err)
	assert.Empty(t, stdout.String())
}
