package guard

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitguard/internal/dependencies"
	"github.com/temirov/gitguard/internal/gitrepo"
	"github.com/temirov/gitguard/internal/shared"
)

const (
	groupUseNameConstant                   = "guard"
	groupShortDescriptionConstant          = "Inspect and enforce the repository status"
	groupLongDescriptionConstant           = "guard reads the long porcelain status of the configured repository and fails unless it matches the expected lines exactly."
	statusUseNameConstant                  = "status"
	statusShortDescriptionConstant         = "Print the repository status one line at a time"
	ensureStatusUseConstant                = "ensure-status [expected-line...]"
	ensureStatusShortDescriptionConstant   = "Fail unless the status equals the provided lines"
	ensureStatusExampleConstant            = "gitguard guard ensure-status 'On branch release' 'nothing to commit, working directory clean'"
	ensureCleanUseNameConstant             = "ensure-clean"
	ensureCleanShortDescriptionConstant    = "Fail unless master is clean and up to date with origin/master"
	ensureCheckoutUseConstant              = "ensure-checkout <tag>"
	ensureCheckoutShortDescriptionConstant = "Fail unless the work tree is clean and detached at the tag"
	statusMatchedMessageTemplateConstant   = "%s: status matches"
	statusMismatchLogMessageConstant       = "repository status mismatch"
	logFieldRepositoryPathConstant         = "repository_path"
	logFieldStatusDiffConstant             = "status_diff"
)

// CommandName is the name of the guard command group.
const CommandName = groupUseNameConstant

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the guard command group.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() shared.RepositoryConfiguration
}

// Build constructs the guard command and its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupUseNameConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	groupCommand.AddCommand(
		&cobra.Command{
			Use:   statusUseNameConstant,
			Short: statusShortDescriptionConstant,
			Args:  cobra.NoArgs,
			RunE:  builder.runStatus,
		},
		&cobra.Command{
			Use:     ensureStatusUseConstant,
			Short:   ensureStatusShortDescriptionConstant,
			Example: ensureStatusExampleConstant,
			Args:    cobra.ArbitraryArgs,
			RunE:    builder.runEnsureStatus,
		},
		&cobra.Command{
			Use:   ensureCleanUseNameConstant,
			Short: ensureCleanShortDescriptionConstant,
			Args:  cobra.NoArgs,
			RunE:  builder.runEnsureClean,
		},
		&cobra.Command{
			Use:   ensureCheckoutUseConstant,
			Short: ensureCheckoutShortDescriptionConstant,
			Args:  cobra.ExactArgs(1),
			RunE:  builder.runEnsureCheckout,
		},
	)

	return groupCommand, nil
}

func (builder *CommandBuilder) runStatus(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	statusLines, statusError := manager.Status(command.Context(), configuration.RepositoryPath)
	if statusError != nil {
		return statusError
	}

	for _, statusLine := range statusLines {
		fmt.Fprintln(command.OutOrStdout(), statusLine)
	}
	return nil
}

func (builder *CommandBuilder) runEnsureStatus(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	expectedLines := append([]string{}, arguments...)
	return builder.reportOutcome(command, configuration, manager.EnsureStatus(command.Context(), configuration.RepositoryPath, expectedLines))
}

func (builder *CommandBuilder) runEnsureClean(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	return builder.reportOutcome(command, configuration, manager.EnsureMasterUpdatedClean(command.Context(), configuration.RepositoryPath))
}

func (builder *CommandBuilder) runEnsureCheckout(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	return builder.reportOutcome(command, configuration, manager.EnsureCheckedOut(command.Context(), configuration.RepositoryPath, arguments[0]))
}

func (builder *CommandBuilder) reportOutcome(command *cobra.Command, configuration shared.RepositoryConfiguration, ensureError error) error {
	if ensureError == nil {
		message := fmt.Sprintf(statusMatchedMessageTemplateConstant, configuration.RepositoryPath)
		fmt.Fprintln(command.OutOrStdout(), message)
		return nil
	}

	var mismatchError gitrepo.StatusMismatchError
	if errors.As(ensureError, &mismatchError) {
		builder.environment().Logger().Warn(
			statusMismatchLogMessageConstant,
			zap.String(logFieldRepositoryPathConstant, configuration.RepositoryPath),
			zap.String(logFieldStatusDiffConstant, mismatchError.Diff()),
		)
	}
	return ensureError
}

func (builder *CommandBuilder) environment() dependencies.CommandEnvironment {
	return dependencies.CommandEnvironment{
		LoggerProvider:               builder.LoggerProvider,
		GitExecutor:                  builder.GitExecutor,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
	}
}
