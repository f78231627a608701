package gitrepo

import (
	"context"
	"fmt"
	"regexp"
	"slices"
)

const (
	gitStatusSubcommandConstant      = "status"
	gitStatusBranchFlagConstant      = "--branch"
	gitStatusPorcelainFlagConstant   = "--porcelain"
	gitStatusLongFlagConstant        = "--long"
	gitStatusFailureTemplateConstant = "failed to read repository status: %w"
	onMasterBranchLineConstant       = "On branch master"
	masterUpToDateLineConstant       = "Your branch is up-to-date with 'origin/master'."
	nothingToCommitLineConstant      = "nothing to commit, working directory clean"
	detachedHeadLineTemplateConstant = "HEAD detached at %s"
)

var statusLineSeparatorPattern = regexp.MustCompile("\n+")

// MasterUpdatedCleanStatus returns the status of a clean master branch in sync with origin/master.
func MasterUpdatedCleanStatus() []string {
	return []string{
		onMasterBranchLineConstant,
		masterUpToDateLineConstant,
		nothingToCommitLineConstant,
	}
}

// CheckedOutStatus returns the status of a clean work tree detached at the provided tag.
func CheckedOutStatus(tagName string) []string {
	return []string{
		fmt.Sprintf(detachedHeadLineTemplateConstant, tagName),
		nothingToCommitLineConstant,
	}
}

// Status returns the long-format status of the repository as ordered lines.
func (manager *RepositoryManager) Status(executionContext context.Context, repositoryPath string) ([]string, error) {
	trimmedRepositoryPath, pathError := requireRepositoryPath(repositoryPath)
	if pathError != nil {
		return nil, pathError
	}

	executionResult, executionError := manager.runGit(
		executionContext,
		trimmedRepositoryPath,
		untranslatedEnvironment(),
		gitStatusSubcommandConstant,
		gitStatusBranchFlagConstant,
		gitStatusPorcelainFlagConstant,
		gitStatusLongFlagConstant,
	)
	if executionError != nil {
		return nil, fmt.Errorf(gitStatusFailureTemplateConstant, executionError)
	}

	return SplitStatusLines(executionResult.StandardOutput), nil
}

// EnsureStatus fails with StatusMismatchError unless the current status equals expected line for line.
func (manager *RepositoryManager) EnsureStatus(executionContext context.Context, repositoryPath string, expected []string) error {
	actual, statusError := manager.Status(executionContext, repositoryPath)
	if statusError != nil {
		return statusError
	}

	if !slices.Equal(expected, actual) {
		return StatusMismatchError{
			Expected: append([]string{}, expected...),
			Actual:   actual,
		}
	}

	return nil
}

// EnsureMasterUpdatedClean requires a clean master branch that is up to date with origin/master.
func (manager *RepositoryManager) EnsureMasterUpdatedClean(executionContext context.Context, repositoryPath string) error {
	return manager.EnsureStatus(executionContext, repositoryPath, MasterUpdatedCleanStatus())
}

// EnsureCheckedOut requires a clean work tree detached at the provided tag.
func (manager *RepositoryManager) EnsureCheckedOut(executionContext context.Context, repositoryPath string, tagName string) error {
	trimmedTagName, tagError := requireTagName(tagName)
	if tagError != nil {
		return tagError
	}
	return manager.EnsureStatus(executionContext, repositoryPath, CheckedOutStatus(trimmedTagName))
}

// SplitStatusLines splits output on runs of newlines and drops trailing empty segments.
func SplitStatusLines(output string) []string {
	segments := statusLineSeparatorPattern.Split(output, -1)
	lastNonEmpty := len(segments)
	for lastNonEmpty > 0 && len(segments[lastNonEmpty-1]) == 0 {
		lastNonEmpty--
	}
	return segments[:lastNonEmpty]
}
