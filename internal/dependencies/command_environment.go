package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/gitguard/internal/gitrepo"
	"github.com/temirov/gitguard/internal/shared"
)

// CommandEnvironment carries the runtime collaborators shared by repository commands.
// Providers are consulted on every call so values resolved after command construction are honored.
type CommandEnvironment struct {
	LoggerProvider               func() *zap.Logger
	GitExecutor                  gitrepo.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() shared.RepositoryConfiguration
}

// Logger returns the provided logger or a no-op logger.
func (environment CommandEnvironment) Logger() *zap.Logger {
	if environment.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := environment.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Configuration returns the sanitized repository configuration, or the defaults when no provider is set.
func (environment CommandEnvironment) Configuration() shared.RepositoryConfiguration {
	if environment.ConfigurationProvider == nil {
		return shared.DefaultRepositoryConfiguration()
	}
	return environment.ConfigurationProvider().Sanitize()
}

// HumanReadableLogging reports whether console command messages were requested.
func (environment CommandEnvironment) HumanReadableLogging() bool {
	if environment.HumanReadableLoggingProvider == nil {
		return false
	}
	return environment.HumanReadableLoggingProvider()
}

// RepositoryManager builds a manager for the current configuration and returns both.
func (environment CommandEnvironment) RepositoryManager() (*gitrepo.RepositoryManager, shared.RepositoryConfiguration, error) {
	configuration := environment.Configuration()
	manager, managerError := ResolveRepositoryManager(
		environment.GitExecutor,
		environment.Logger(),
		environment.HumanReadableLogging(),
		configuration,
	)
	if managerError != nil {
		return nil, configuration, managerError
	}
	return manager, configuration, nil
}
