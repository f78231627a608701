// Package dependencies builds the default collaborators used by gitguard commands.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/gitguard/internal/execshell"
	"github.com/temirov/gitguard/internal/gitrepo"
	"github.com/temirov/gitguard/internal/shared"
)

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default for the configured git command.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, humanReadableLogging bool, configuration shared.RepositoryConfiguration) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), execshell.ExecutorOptions{
		HumanReadableLogging: humanReadableLogging,
		GitCommandLine:       configuration.Sanitize().GitCommand,
	})
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryManager builds a RepositoryManager over the resolved executor.
func ResolveRepositoryManager(existing gitrepo.GitExecutor, logger *zap.Logger, humanReadableLogging bool, configuration shared.RepositoryConfiguration) (*gitrepo.RepositoryManager, error) {
	gitExecutor, executorError := ResolveGitExecutor(existing, logger, humanReadableLogging, configuration)
	if executorError != nil {
		return nil, executorError
	}
	return gitrepo.NewRepositoryManager(gitExecutor)
}
