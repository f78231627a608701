package gitrepo_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitguard/internal/execshell"
	"github.com/temirov/gitguard/internal/gitrepo"
)

const (
	integrationVersionFileName = "version.txt"
	integrationScratchFileName = "scratch.txt"
	integrationCommitMessage   = "Bump version to 1.0.0"
	integrationTagName         = "v1.0.0"
	integrationAddedFileName   = "file1"
	integrationLocalEdit       = "LOCAL EDIT\n"
	workingTreeCleanLine       = "nothing to commit, working tree clean"
	integrationFileMode        = 0o644
)

type integrationRepository struct {
	workTreePath string
	remotePath   string
}

func requireGitBinary(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(string(execshell.CommandGit)); lookupError != nil {
		testInstance.Skip("git executable not available")
	}
}

func runSetupGit(testInstance *testing.T, workingDirectory string, arguments ...string) {
	testInstance.Helper()
	command := exec.Command(string(execshell.CommandGit), arguments...)
	command.Dir = workingDirectory
	output, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf("git %s failed: %v\n%s", strings.Join(arguments, " "), runError, output)
	}
}

func writeWorkTreeFile(testInstance *testing.T, workTreePath string, fileName string, contents string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(workTreePath, fileName), []byte(contents), integrationFileMode))
}

func initializeIntegrationRepository(testInstance *testing.T) integrationRepository {
	testInstance.Helper()
	requireGitBinary(testInstance)

	testInstance.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	testInstance.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	remotePath := filepath.Join(testInstance.TempDir(), "remote.git")
	workTreePath := filepath.Join(testInstance.TempDir(), "work")

	runSetupGit(testInstance, testInstance.TempDir(), "-c", "init.defaultBranch=master", "init", "--quiet", "--bare", remotePath)
	runSetupGit(testInstance, testInstance.TempDir(), "-c", "init.defaultBranch=master", "init", "--quiet", workTreePath)
	runSetupGit(testInstance, workTreePath, "config", "user.name", "Release Bot")
	runSetupGit(testInstance, workTreePath, "config", "user.email", "release@example.com")
	runSetupGit(testInstance, workTreePath, "config", "tag.gpgSign", "false")
	runSetupGit(testInstance, workTreePath, "config", "commit.gpgSign", "false")
	runSetupGit(testInstance, workTreePath, "remote", "add", "origin", remotePath)

	writeWorkTreeFile(testInstance, workTreePath, integrationVersionFileName, "0.9.0\n")
	runSetupGit(testInstance, workTreePath, "add", integrationVersionFileName)
	runSetupGit(testInstance, workTreePath, "commit", "--quiet", "--message", "Initial commit")
	runSetupGit(testInstance, workTreePath, "push", "--quiet", "--set-upstream", "origin", "master")

	return integrationRepository{workTreePath: workTreePath, remotePath: remotePath}
}

func newIntegrationManager(testInstance *testing.T) *gitrepo.RepositoryManager {
	testInstance.Helper()
	executor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), execshell.ExecutorOptions{})
	require.NoError(testInstance, executorError)
	manager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)
	return manager
}

func TestRepositoryManagerPublishesAgainstRealRepository(testInstance *testing.T) {
	repository := initializeIntegrationRepository(testInstance)
	manager := newIntegrationManager(testInstance)
	executionContext := context.Background()

	statusLines, statusError := manager.Status(executionContext, repository.workTreePath)
	require.NoError(testInstance, statusError)
	require.NotEmpty(testInstance, statusLines)
	require.Equal(testInstance, "On branch master", statusLines[0])

	clean, cleanError := manager.CheckCleanPaths(executionContext, repository.workTreePath, []string{integrationVersionFileName})
	require.NoError(testInstance, cleanError)
	require.True(testInstance, clean)

	writeWorkTreeFile(testInstance, repository.workTreePath, integrationVersionFileName, "1.0.0\n")
	writeWorkTreeFile(testInstance, repository.workTreePath, integrationScratchFileName, "draft\n")

	clean, cleanError = manager.CheckCleanPaths(executionContext, repository.workTreePath, []string{integrationVersionFileName})
	require.NoError(testInstance, cleanError)
	require.False(testInstance, clean)

	committed, commitError := manager.Commit(executionContext, gitrepo.CommitOptions{
		RepositoryPath: repository.workTreePath,
		Message:        integrationCommitMessage,
		Paths:          []string{integrationVersionFileName},
	})
	require.NoError(testInstance, commitError)
	require.True(testInstance, committed)

	workTreeRepository, openError := git.PlainOpen(repository.workTreePath)
	require.NoError(testInstance, openError)
	headReference, headError := workTreeRepository.Head()
	require.NoError(testInstance, headError)
	headCommit, commitLookupError := workTreeRepository.CommitObject(headReference.Hash())
	require.NoError(testInstance, commitLookupError)
	require.Equal(testInstance, integrationCommitMessage, strings.TrimSpace(headCommit.Message))

	remoteRepository, remoteOpenError := git.PlainOpen(repository.remotePath)
	require.NoError(testInstance, remoteOpenError)
	remoteMaster, remoteMasterError := remoteRepository.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(testInstance, remoteMasterError)
	require.Equal(testInstance, headReference.Hash(), remoteMaster.Hash())

	scratchClean, scratchError := manager.CheckCleanPaths(executionContext, repository.workTreePath, []string{integrationScratchFileName})
	require.NoError(testInstance, scratchError)
	require.False(testInstance, scratchClean)

	committedAgain, repeatError := manager.Commit(executionContext, gitrepo.CommitOptions{
		RepositoryPath: repository.workTreePath,
		Message:        integrationCommitMessage,
		Paths:          []string{integrationVersionFileName},
	})
	require.NoError(testInstance, repeatError)
	require.False(testInstance, committedAgain)

	subjects, logError := manager.RecentCommitSubjects(executionContext, repository.workTreePath, 1)
	require.NoError(testInstance, logError)
	require.Equal(testInstance, []string{integrationCommitMessage}, subjects)

	require.NoError(testInstance, manager.Tag(executionContext, gitrepo.TagOptions{
		RepositoryPath: repository.workTreePath,
		TagName:        integrationTagName,
	}))

	tags, listError := manager.ListTags(executionContext, repository.workTreePath)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{integrationTagName}, tags)

	remoteTagReference, remoteTagError := remoteRepository.Tag(integrationTagName)
	require.NoError(testInstance, remoteTagError)
	remoteTagObject, tagObjectError := remoteRepository.TagObject(remoteTagReference.Hash())
	require.NoError(testInstance, tagObjectError)
	require.Equal(testInstance, "Release "+integrationTagName, strings.TrimSpace(remoteTagObject.Message))
	require.Equal(testInstance, headReference.Hash(), remoteTagObject.Target)

	require.NoError(testInstance, os.Remove(filepath.Join(repository.workTreePath, integrationScratchFileName)))
	require.NoError(testInstance, manager.Checkout(executionContext, repository.workTreePath, integrationTagName))

	detachedHead, detachedHeadError := workTreeRepository.Head()
	require.NoError(testInstance, detachedHeadError)
	require.Equal(testInstance, plumbing.HEAD, detachedHead.Name())
	require.Equal(testInstance, headReference.Hash(), detachedHead.Hash())

	detachedStatus, detachedStatusError := manager.Status(executionContext, repository.workTreePath)
	require.NoError(testInstance, detachedStatusError)
	require.Equal(testInstance, []string{"HEAD detached at " + integrationTagName, workingTreeCleanLine}, detachedStatus)

	// Current git says "working tree clean"; the checked-out contract keeps the older "working directory clean".
	var mismatchError gitrepo.StatusMismatchError
	require.ErrorAs(testInstance, manager.EnsureCheckedOut(executionContext, repository.workTreePath, integrationTagName), &mismatchError)
	require.Equal(testInstance, gitrepo.CheckedOutStatus(integrationTagName), mismatchError.Expected)
	require.Equal(testInstance, detachedStatus, mismatchError.Actual)
	require.NoError(testInstance, manager.EnsureStatus(executionContext, repository.workTreePath, detachedStatus))
}

func TestRepositoryManagerCommitsUntrackedAndDeletedPaths(testInstance *testing.T) {
	repository := initializeIntegrationRepository(testInstance)
	manager := newIntegrationManager(testInstance)
	executionContext := context.Background()

	writeWorkTreeFile(testInstance, repository.workTreePath, integrationAddedFileName, "first\n")
	requireCleanPath(testInstance, manager, repository, integrationAddedFileName, false)

	commitPath(testInstance, manager, repository, "Add file1", integrationAddedFileName)
	requireCleanPath(testInstance, manager, repository, integrationAddedFileName, true)

	subjects, logError := manager.RecentCommitSubjects(executionContext, repository.workTreePath, 1)
	require.NoError(testInstance, logError)
	require.Equal(testInstance, []string{"Add file1"}, subjects)

	runSetupGit(testInstance, repository.workTreePath, "rm", "--quiet", integrationVersionFileName)
	requireCleanPath(testInstance, manager, repository, integrationVersionFileName, false)
	commitPath(testInstance, manager, repository, "Remove version file", integrationVersionFileName)
	requireCleanPath(testInstance, manager, repository, integrationVersionFileName, true)

	require.NoError(testInstance, os.Remove(filepath.Join(repository.workTreePath, integrationAddedFileName)))
	requireCleanPath(testInstance, manager, repository, integrationAddedFileName, false)
	commitPath(testInstance, manager, repository, "Remove file1", integrationAddedFileName)
	requireCleanPath(testInstance, manager, repository, integrationAddedFileName, true)

	subjects, logError = manager.RecentCommitSubjects(executionContext, repository.workTreePath, 3)
	require.NoError(testInstance, logError)
	require.Equal(testInstance, []string{"Remove file1", "Remove version file", "Add file1"}, subjects)

	workTreeRepository, openError := git.PlainOpen(repository.workTreePath)
	require.NoError(testInstance, openError)
	headReference, headError := workTreeRepository.Head()
	require.NoError(testInstance, headError)
	headCommit, commitLookupError := workTreeRepository.CommitObject(headReference.Hash())
	require.NoError(testInstance, commitLookupError)
	for _, removedFileName := range []string{integrationVersionFileName, integrationAddedFileName} {
		_, fileError := headCommit.File(removedFileName)
		require.ErrorIs(testInstance, fileError, object.ErrFileNotFound)
	}

	remoteRepository, remoteOpenError := git.PlainOpen(repository.remotePath)
	require.NoError(testInstance, remoteOpenError)
	remoteMaster, remoteMasterError := remoteRepository.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(testInstance, remoteMasterError)
	require.Equal(testInstance, headReference.Hash(), remoteMaster.Hash())
}

func TestRepositoryManagerRejectsOptionLikeTagNames(testInstance *testing.T) {
	repository := initializeIntegrationRepository(testInstance)
	manager := newIntegrationManager(testInstance)
	executionContext := context.Background()

	writeWorkTreeFile(testInstance, repository.workTreePath, integrationVersionFileName, integrationLocalEdit)

	require.ErrorIs(testInstance, manager.Checkout(executionContext, repository.workTreePath, "--force"), gitrepo.ErrInvalidTagName)
	require.ErrorIs(testInstance, manager.Tag(executionContext, gitrepo.TagOptions{RepositoryPath: repository.workTreePath, TagName: "--list"}), gitrepo.ErrInvalidTagName)

	contents, readError := os.ReadFile(filepath.Join(repository.workTreePath, integrationVersionFileName))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, integrationLocalEdit, string(contents))

	tags, listError := manager.ListTags(executionContext, repository.workTreePath)
	require.NoError(testInstance, listError)
	require.Empty(testInstance, tags)
}

func requireCleanPath(testInstance *testing.T, manager *gitrepo.RepositoryManager, repository integrationRepository, path string, expectedClean bool) {
	testInstance.Helper()
	clean, cleanError := manager.CheckCleanPaths(context.Background(), repository.workTreePath, []string{path})
	require.NoError(testInstance, cleanError)
	require.Equal(testInstance, expectedClean, clean)
}

func commitPath(testInstance *testing.T, manager *gitrepo.RepositoryManager, repository integrationRepository, message string, path string) {
	testInstance.Helper()
	committed, commitError := manager.Commit(context.Background(), gitrepo.CommitOptions{
		RepositoryPath: repository.workTreePath,
		Message:        message,
		Paths:          []string{path},
	})
	require.NoError(testInstance, commitError)
	require.True(testInstance, committed)
}

func TestRepositoryManagerReportsMissingRepository(testInstance *testing.T) {
	requireGitBinary(testInstance)
	testInstance.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	testInstance.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
	manager := newIntegrationManager(testInstance)

	missingRepositoryPath := testInstance.TempDir()
	_, statusError := manager.Status(context.Background(), missingRepositoryPath)
	require.Error(testInstance, statusError)

	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, statusError, &failedError)
	require.NotZero(testInstance, failedError.Result.ExitCode)

	checkoutError := manager.Checkout(context.Background(), missingRepositoryPath, integrationTagName)
	require.ErrorAs(testInstance, checkoutError, &failedError)
}
