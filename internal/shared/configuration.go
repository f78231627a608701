// Package shared holds the repository settings consumed by every gitguard command.
package shared

import "strings"

const (
	// DefaultRepositoryPathConstant is the work tree used when none is configured.
	DefaultRepositoryPathConstant = "."
	// DefaultRemoteNameConstant is the remote used when none is configured.
	DefaultRemoteNameConstant = "origin"
	// DefaultGitCommandConstant is the git command line used when none is configured.
	DefaultGitCommandConstant = "git"

	repositoryPathKeySuffixConstant = ".path"
	remoteNameKeySuffixConstant     = ".remote"
	gitCommandKeySuffixConstant     = ".git_command"
)

// RepositoryConfiguration selects the work tree, the push remote, and the git binary.
type RepositoryConfiguration struct {
	RepositoryPath string `mapstructure:"path"`
	RemoteName     string `mapstructure:"remote"`
	GitCommand     string `mapstructure:"git_command"`
}

// DefaultRepositoryConfiguration returns the built-in repository settings.
func DefaultRepositoryConfiguration() RepositoryConfiguration {
	return RepositoryConfiguration{
		RepositoryPath: DefaultRepositoryPathConstant,
		RemoteName:     DefaultRemoteNameConstant,
		GitCommand:     DefaultGitCommandConstant,
	}
}

// DefaultConfigurationValues returns viper defaults for the repository section rooted at prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultRepositoryConfiguration()
	return map[string]any{
		prefix + repositoryPathKeySuffixConstant: defaults.RepositoryPath,
		prefix + remoteNameKeySuffixConstant:     defaults.RemoteName,
		prefix + gitCommandKeySuffixConstant:     defaults.GitCommand,
	}
}

// Sanitize trims values and restores defaults for blank fields.
func (configuration RepositoryConfiguration) Sanitize() RepositoryConfiguration {
	defaults := DefaultRepositoryConfiguration()
	return RepositoryConfiguration{
		RepositoryPath: valueOrDefault(configuration.RepositoryPath, defaults.RepositoryPath),
		RemoteName:     valueOrDefault(configuration.RemoteName, defaults.RemoteName),
		GitCommand:     valueOrDefault(configuration.GitCommand, defaults.GitCommand),
	}
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
