package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitguard/internal/execshell"
	"github.com/temirov/gitguard/internal/gitrepo"
)

const (
	testRepositoryPath        = "/tmp/release-repo"
	masterUpdatedCleanOutput  = "On branch master\nYour branch is up-to-date with 'origin/master'.\nnothing to commit, working directory clean\n"
	checkedOutVersionOutput   = "HEAD detached at v1.2.0\nnothing to commit, working directory clean\n"
	expectedMismatchErrorText = "Expected Git status to be:\n" +
		"  On branch master\n" +
		"  Your branch is up-to-date with 'origin/master'.\n" +
		"  nothing to commit, working directory clean\n" +
		"but it currently is:\n" +
		"  On branch feature\n" +
		"  nothing to commit, working directory clean"
)

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestSplitStatusLines(testInstance *testing.T) {
	testCases := []struct {
		name     string
		output   string
		expected []string
	}{
		{
			name:     "trailing_newline",
			output:   "On branch master\nnothing to commit\n",
			expected: []string{"On branch master", "nothing to commit"},
		},
		{
			name:     "blank_lines_collapse",
			output:   "On branch master\n\n\nnothing to commit\n\n",
			expected: []string{"On branch master", "nothing to commit"},
		},
		{
			name:     "no_trailing_newline",
			output:   "HEAD detached at v1",
			expected: []string{"HEAD detached at v1"},
		},
		{
			name:     "empty_output",
			output:   "",
			expected: []string{},
		},
		{
			name:     "leading_newline_keeps_empty_first_line",
			output:   "\nOn branch master\n",
			expected: []string{"", "On branch master"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, gitrepo.SplitStatusLines(testCase.output))
		})
	}
}

func TestStatusRunsLongPorcelainStatus(testInstance *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{outputResponse(masterUpdatedCleanOutput)}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	statusLines, statusError := manager.Status(context.Background(), "  "+testRepositoryPath+" ")
	require.NoError(testInstance, statusError)
	require.Equal(testInstance, gitrepo.MasterUpdatedCleanStatus(), statusLines)

	require.Len(testInstance, executor.recorded, 1)
	require.Equal(testInstance, []string{"status", "--branch", "--porcelain", "--long"}, executor.recorded[0].Arguments)
	require.Equal(testInstance, testRepositoryPath, executor.recorded[0].WorkingDirectory)
	require.Equal(testInstance, "C", executor.recorded[0].EnvironmentVariables["LC_ALL"])
}

func TestStatusWrapsCommandFailures(testInstance *testing.T) {
	commandFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"status"}}},
		Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: not a git repository"},
	}
	executor := &stubGitExecutor{responses: []stubGitResponse{{err: commandFailure}}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	_, statusError := manager.Status(context.Background(), testRepositoryPath)
	require.Error(testInstance, statusError)

	var failedError execshell.CommandFailedError
	require.True(testInstance, errors.As(statusError, &failedError))
	require.Equal(testInstance, 128, failedError.Result.ExitCode)
	require.Contains(testInstance, statusError.Error(), "fatal: not a git repository")
}

func TestEnsureStatus(testInstance *testing.T) {
	testCases := []struct {
		name           string
		output         string
		expected       []string
		expectMismatch bool
	}{
		{
			name:     "exact_match",
			output:   masterUpdatedCleanOutput,
			expected: gitrepo.MasterUpdatedCleanStatus(),
		},
		{
			name:           "different_line",
			output:         "On branch feature\nnothing to commit, working directory clean\n",
			expected:       []string{"On branch master", "nothing to commit, working directory clean"},
			expectMismatch: true,
		},
		{
			name:           "extra_trailing_line",
			output:         masterUpdatedCleanOutput + "?? notes.txt\n",
			expected:       gitrepo.MasterUpdatedCleanStatus(),
			expectMismatch: true,
		},
		{
			name:           "prefix_is_not_enough",
			output:         "On branch master\n",
			expected:       gitrepo.MasterUpdatedCleanStatus(),
			expectMismatch: true,
		},
		{
			name:     "empty_expectation_matches_empty_output",
			output:   "",
			expected: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{responses: []stubGitResponse{outputResponse(testCase.output)}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			ensureError := manager.EnsureStatus(context.Background(), testRepositoryPath, testCase.expected)
			if !testCase.expectMismatch {
				require.NoError(testInstance, ensureError)
				return
			}

			var mismatchError gitrepo.StatusMismatchError
			require.ErrorAs(testInstance, ensureError, &mismatchError)
			require.Equal(testInstance, testCase.expected, mismatchError.Expected)
			require.Equal(testInstance, gitrepo.SplitStatusLines(testCase.output), mismatchError.Actual)
		})
	}
}

func TestEnsureMasterUpdatedCleanReportsBothStatuses(testInstance *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{
		outputResponse("On branch feature\nnothing to commit, working directory clean\n"),
	}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	ensureError := manager.EnsureMasterUpdatedClean(context.Background(), testRepositoryPath)
	require.EqualError(testInstance, ensureError, expectedMismatchErrorText)
}

func TestEnsureMasterUpdatedCleanPasses(testInstance *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{outputResponse(masterUpdatedCleanOutput)}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.EnsureMasterUpdatedClean(context.Background(), testRepositoryPath))
}

func TestEnsureCheckedOut(testInstance *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{
		outputResponse(checkedOutVersionOutput),
		outputResponse(checkedOutVersionOutput),
	}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.EnsureCheckedOut(context.Background(), testRepositoryPath, "v1.2.0"))

	ensureError := manager.EnsureCheckedOut(context.Background(), testRepositoryPath, "v1.3.0")
	var mismatchError gitrepo.StatusMismatchError
	require.ErrorAs(testInstance, ensureError, &mismatchError)
	require.Equal(testInstance, []string{"HEAD detached at v1.3.0", "nothing to commit, working directory clean"}, mismatchError.Expected)
}

func TestEnsureOperationsValidateInputs(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.ErrorIs(testInstance, manager.EnsureMasterUpdatedClean(context.Background(), " "), gitrepo.ErrRepositoryPathRequired)
	require.ErrorIs(testInstance, manager.EnsureCheckedOut(context.Background(), testRepositoryPath, ""), gitrepo.ErrTagNameRequired)
	require.ErrorIs(testInstance, manager.EnsureCheckedOut(context.Background(), testRepositoryPath, "--force"), gitrepo.ErrInvalidTagName)
	require.ErrorIs(testInstance, manager.EnsureCheckedOut(context.Background(), testRepositoryPath, "v1 v2"), gitrepo.ErrInvalidTagName)
	require.Empty(testInstance, executor.recorded)
}

func TestStatusMismatchErrorFormatsEmptySequences(testInstance *testing.T) {
	mismatchError := gitrepo.StatusMismatchError{Expected: []string{}, Actual: []string{"?? notes.txt"}}
	require.Equal(testInstance, "Expected Git status to be:\n\nbut it currently is:\n  ?? notes.txt", mismatchError.Error())
}

func TestStatusMismatchErrorDiff(testInstance *testing.T) {
	mismatchError := gitrepo.StatusMismatchError{
		Expected: gitrepo.MasterUpdatedCleanStatus(),
		Actual:   []string{"On branch master", "Your branch is ahead of 'origin/master' by 1 commit."},
	}

	diffText := mismatchError.Diff()
	require.Contains(testInstance, diffText, "--- expected")
	require.Contains(testInstance, diffText, "+++ actual")
	require.Contains(testInstance, diffText, "-Your branch is up-to-date with 'origin/master'.")
	require.Contains(testInstance, diffText, "+Your branch is ahead of 'origin/master' by 1 commit.")
	require.Contains(testInstance, diffText, " On branch master")
}
