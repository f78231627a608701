package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/gitguard/internal/execshell"
)

const (
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	defaultRemoteNameConstant             = "origin"
	localeEnvironmentNameConstant         = "LC_ALL"
	localeEnvironmentValueConstant        = "C"
	terminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValueConstant   = "0"
)

// ErrRepositoryPathRequired indicates the repository path was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager runs guard and publishing operations against a git work tree.
// It assumes exclusive access to the work tree for the duration of each call.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, environment map[string]string, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: environment,
	})
}

func requireRepositoryPath(repositoryPath string) (string, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return "", ErrRepositoryPathRequired
	}
	return trimmedRepositoryPath, nil
}

func resolveRemoteName(remoteName string) string {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return defaultRemoteNameConstant
	}
	return trimmedRemoteName
}

// untranslatedEnvironment keeps git output in the untranslated form the guard compares against.
func untranslatedEnvironment() map[string]string {
	return map[string]string{localeEnvironmentNameConstant: localeEnvironmentValueConstant}
}

func nonInteractiveEnvironment() map[string]string {
	return map[string]string{terminalPromptEnvironmentNameConstant: terminalPromptDisabledValueConstant}
}
