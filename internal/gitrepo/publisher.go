package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

const (
	tagNameRequiredMessageConstant       = "tag name must be provided"
	invalidTagNameMessageConstant        = "tag name is not a valid git reference"
	invalidTagNameTemplateConstant       = "%w: %q"
	commitMessageRequiredMessageConstant = "commit message must be provided"
	commitPathsRequiredMessageConstant   = "at least one path must be provided"
	invalidLogLimitMessageConstant       = "log limit must be positive"
	gitAddSubcommandConstant             = "add"
	gitAddAllFlagConstant                = "--all"
	gitCommitSubcommandConstant          = "commit"
	gitMessageFlagConstant               = "--message"
	gitPushSubcommandConstant            = "push"
	gitHeadReferenceConstant             = "HEAD"
	gitTagSubcommandConstant             = "tag"
	gitTagAnnotateFlagConstant           = "--annotate"
	gitTagListFlagConstant               = "--list"
	gitTagReferencePrefixConstant        = "refs/tags/"
	gitCheckoutSubcommandConstant        = "checkout"
	gitQuietFlagConstant                 = "--quiet"
	gitLogSubcommandConstant             = "log"
	gitLogSubjectFormatFlagConstant      = "--format=%s"
	gitLogMaxCountFlagPrefixConstant     = "--max-count="
	gitPathSeparatorConstant             = "--"
	gitEndOfOptionsFlagConstant          = "--end-of-options"
	gitStatusNullTerminatedFlagConstant  = "-z"
	porcelainEntrySeparatorConstant      = "\x00"
	porcelainMinimumEntryLengthConstant  = 4
	porcelainPathOffsetConstant          = 3
	porcelainDeletedStateConstant        = 'D'
	porcelainRenamedStateConstant        = 'R'
	porcelainCopiedStateConstant         = 'C'
	porcelainUnmodifiedStateConstant     = ' '
	defaultTagMessageTemplateConstant    = "Release %s"
	cleanCheckFailureTemplateConstant    = "failed to check pending changes: %w"
	stageFailureTemplateConstant         = "failed to stage %s: %w"
	commitFailureTemplateConstant        = "failed to commit %s: %w"
	pushFailureTemplateConstant          = "failed to push %s to %s: %w"
	tagCreateFailureTemplateConstant     = "failed to create tag %s: %w"
	tagListFailureTemplateConstant       = "failed to list tags: %w"
	checkoutFailureTemplateConstant      = "failed to check out %s: %w"
	logFailureTemplateConstant           = "failed to read commit history: %w"
	pathListSeparatorConstant            = ", "
)

// ErrTagNameRequired indicates the tag name was empty.
var ErrTagNameRequired = errors.New(tagNameRequiredMessageConstant)

// ErrInvalidTagName indicates a tag name git would reject or parse as an option.
var ErrInvalidTagName = errors.New(invalidTagNameMessageConstant)

// ErrCommitMessageRequired indicates the commit message was empty.
var ErrCommitMessageRequired = errors.New(commitMessageRequiredMessageConstant)

// ErrCommitPathsRequired indicates no paths were supplied for a commit.
var ErrCommitPathsRequired = errors.New(commitPathsRequiredMessageConstant)

// ErrInvalidLogLimit indicates a non-positive commit history limit.
var ErrInvalidLogLimit = errors.New(invalidLogLimitMessageConstant)

// CommitOptions configure a stage, commit, and push sequence.
type CommitOptions struct {
	RepositoryPath string
	Message        string
	Paths          []string
	RemoteName     string
}

// TagOptions configure an annotated tag and its push.
type TagOptions struct {
	RepositoryPath string
	TagName        string
	Message        string
	RemoteName     string
}

// CheckCleanPaths reports whether the paths have no pending tracked or untracked changes.
// An empty path list checks the whole work tree.
func (manager *RepositoryManager) CheckCleanPaths(executionContext context.Context, repositoryPath string, paths []string) (bool, error) {
	changes, changesError := manager.pendingChanges(executionContext, repositoryPath, paths)
	if changesError != nil {
		return false, changesError
	}
	return len(changes) == 0, nil
}

type pendingChange struct {
	indexState    byte
	workTreeState byte
	path          string
}

func (change pendingChange) stagedDeletion() bool {
	return change.indexState == porcelainDeletedStateConstant && change.workTreeState == porcelainUnmodifiedStateConstant
}

func (manager *RepositoryManager) pendingChanges(executionContext context.Context, repositoryPath string, paths []string) ([]pendingChange, error) {
	trimmedRepositoryPath, pathError := requireRepositoryPath(repositoryPath)
	if pathError != nil {
		return nil, pathError
	}

	arguments := []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant, gitStatusNullTerminatedFlagConstant, gitPathSeparatorConstant}
	arguments = append(arguments, sanitizePaths(paths)...)

	executionResult, executionError := manager.runGit(executionContext, trimmedRepositoryPath, nil, arguments...)
	if executionError != nil {
		return nil, fmt.Errorf(cleanCheckFailureTemplateConstant, executionError)
	}

	return parsePorcelainEntries(executionResult.StandardOutput), nil
}

// parsePorcelainEntries reads NUL-terminated "XY path" entries; renames and copies carry a second source path entry.
func parsePorcelainEntries(output string) []pendingChange {
	entries := strings.Split(output, porcelainEntrySeparatorConstant)
	changes := make([]pendingChange, 0, len(entries))
	for index := 0; index < len(entries); index++ {
		entry := entries[index]
		if len(strings.TrimSpace(entry)) == 0 {
			continue
		}
		if len(entry) < porcelainMinimumEntryLengthConstant {
			changes = append(changes, pendingChange{path: entry})
			continue
		}
		change := pendingChange{indexState: entry[0], workTreeState: entry[1], path: entry[porcelainPathOffsetConstant:]}
		if change.indexState == porcelainRenamedStateConstant || change.indexState == porcelainCopiedStateConstant {
			index++
		}
		changes = append(changes, change)
	}
	return changes
}

// pathsToStage drops paths already staged for deletion; git add rejects pathspecs gone from both index and work tree.
func pathsToStage(paths []string, changes []pendingChange) []string {
	stagedDeletions := make(map[string]struct{})
	for _, change := range changes {
		if change.stagedDeletion() {
			stagedDeletions[change.path] = struct{}{}
		}
	}

	stagePaths := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, deleted := stagedDeletions[path]; deleted {
			continue
		}
		stagePaths = append(stagePaths, path)
	}
	return stagePaths
}

// Commit stages exactly the provided paths, commits them, and pushes the current branch.
// It returns false without side effects when the paths are already clean. The sequence
// is not atomic: a failed push leaves the local commit in place.
func (manager *RepositoryManager) Commit(executionContext context.Context, options CommitOptions) (bool, error) {
	trimmedRepositoryPath, pathError := requireRepositoryPath(options.RepositoryPath)
	if pathError != nil {
		return false, pathError
	}
	if len(strings.TrimSpace(options.Message)) == 0 {
		return false, ErrCommitMessageRequired
	}
	paths := sanitizePaths(options.Paths)
	if len(paths) == 0 {
		return false, ErrCommitPathsRequired
	}

	changes, changesError := manager.pendingChanges(executionContext, trimmedRepositoryPath, paths)
	if changesError != nil {
		return false, changesError
	}
	if len(changes) == 0 {
		return false, nil
	}

	pathLabel := strings.Join(paths, pathListSeparatorConstant)

	if stagePaths := pathsToStage(paths, changes); len(stagePaths) > 0 {
		stageArguments := append([]string{gitAddSubcommandConstant, gitAddAllFlagConstant, gitPathSeparatorConstant}, stagePaths...)
		if _, stageError := manager.runGit(executionContext, trimmedRepositoryPath, nil, stageArguments...); stageError != nil {
			return false, fmt.Errorf(stageFailureTemplateConstant, pathLabel, stageError)
		}
	}

	commitArguments := append([]string{gitCommitSubcommandConstant, gitMessageFlagConstant, options.Message, gitPathSeparatorConstant}, paths...)
	if _, commitError := manager.runGit(executionContext, trimmedRepositoryPath, nil, commitArguments...); commitError != nil {
		return false, fmt.Errorf(commitFailureTemplateConstant, pathLabel, commitError)
	}

	remoteName := resolveRemoteName(options.RemoteName)
	pushArguments := []string{gitPushSubcommandConstant, gitEndOfOptionsFlagConstant, remoteName, gitHeadReferenceConstant}
	if _, pushError := manager.runGit(executionContext, trimmedRepositoryPath, nonInteractiveEnvironment(), pushArguments...); pushError != nil {
		return false, fmt.Errorf(pushFailureTemplateConstant, gitHeadReferenceConstant, remoteName, pushError)
	}

	return true, nil
}

// Tag creates an annotated tag and pushes it to the remote under the same name.
// The two steps are not atomic.
func (manager *RepositoryManager) Tag(executionContext context.Context, options TagOptions) error {
	trimmedRepositoryPath, pathError := requireRepositoryPath(options.RepositoryPath)
	if pathError != nil {
		return pathError
	}
	trimmedTagName, tagError := requireTagName(options.TagName)
	if tagError != nil {
		return tagError
	}

	message := options.Message
	if len(strings.TrimSpace(message)) == 0 {
		message = fmt.Sprintf(defaultTagMessageTemplateConstant, trimmedTagName)
	}

	createArguments := []string{gitTagSubcommandConstant, gitTagAnnotateFlagConstant, gitMessageFlagConstant, message, gitEndOfOptionsFlagConstant, trimmedTagName}
	if _, createError := manager.runGit(executionContext, trimmedRepositoryPath, nil, createArguments...); createError != nil {
		return fmt.Errorf(tagCreateFailureTemplateConstant, trimmedTagName, createError)
	}

	remoteName := resolveRemoteName(options.RemoteName)
	pushArguments := []string{gitPushSubcommandConstant, gitEndOfOptionsFlagConstant, remoteName, gitTagReferencePrefixConstant + trimmedTagName}
	if _, pushError := manager.runGit(executionContext, trimmedRepositoryPath, nonInteractiveEnvironment(), pushArguments...); pushError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, trimmedTagName, remoteName, pushError)
	}

	return nil
}

// ListTags returns local tag names in git's default order.
func (manager *RepositoryManager) ListTags(executionContext context.Context, repositoryPath string) ([]string, error) {
	trimmedRepositoryPath, pathError := requireRepositoryPath(repositoryPath)
	if pathError != nil {
		return nil, pathError
	}

	executionResult, executionError := manager.runGit(executionContext, trimmedRepositoryPath, nil, gitTagSubcommandConstant, gitTagListFlagConstant)
	if executionError != nil {
		return nil, fmt.Errorf(tagListFailureTemplateConstant, executionError)
	}

	return SplitStatusLines(executionResult.StandardOutput), nil
}

// Checkout checks out the tag, leaving the repository in a detached HEAD state.
func (manager *RepositoryManager) Checkout(executionContext context.Context, repositoryPath string, tagName string) error {
	trimmedRepositoryPath, pathError := requireRepositoryPath(repositoryPath)
	if pathError != nil {
		return pathError
	}
	trimmedTagName, tagError := requireTagName(tagName)
	if tagError != nil {
		return tagError
	}

	checkoutArguments := []string{gitCheckoutSubcommandConstant, gitQuietFlagConstant, gitEndOfOptionsFlagConstant, trimmedTagName, gitPathSeparatorConstant}
	if _, checkoutError := manager.runGit(executionContext, trimmedRepositoryPath, nil, checkoutArguments...); checkoutError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, trimmedTagName, checkoutError)
	}
	return nil
}

// RecentCommitSubjects returns the subjects of the newest commits reachable from HEAD, newest first.
func (manager *RepositoryManager) RecentCommitSubjects(executionContext context.Context, repositoryPath string, limit int) ([]string, error) {
	trimmedRepositoryPath, pathError := requireRepositoryPath(repositoryPath)
	if pathError != nil {
		return nil, pathError
	}
	if limit <= 0 {
		return nil, ErrInvalidLogLimit
	}

	executionResult, executionError := manager.runGit(
		executionContext,
		trimmedRepositoryPath,
		nil,
		gitLogSubcommandConstant,
		gitLogSubjectFormatFlagConstant,
		gitLogMaxCountFlagPrefixConstant+strconv.Itoa(limit),
	)
	if executionError != nil {
		return nil, fmt.Errorf(logFailureTemplateConstant, executionError)
	}

	return SplitStatusLines(executionResult.StandardOutput), nil
}

// requireTagName applies git check-ref-format rules to refs/tags/<name>, which also rejects a leading dash.
func requireTagName(tagName string) (string, error) {
	trimmedTagName := strings.TrimSpace(tagName)
	if len(trimmedTagName) == 0 {
		return "", ErrTagNameRequired
	}
	if validationError := plumbing.NewTagReferenceName(trimmedTagName).Validate(); validationError != nil {
		return "", fmt.Errorf(invalidTagNameTemplateConstant, ErrInvalidTagName, trimmedTagName)
	}
	return trimmedTagName, nil
}

func sanitizePaths(paths []string) []string {
	sanitized := make([]string, 0, len(paths))
	for _, path := range paths {
		if len(strings.TrimSpace(path)) == 0 {
			continue
		}
		sanitized = append(sanitized, path)
	}
	return sanitized
}
