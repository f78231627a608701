package publish

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitguard/internal/dependencies"
	"github.com/temirov/gitguard/internal/gitrepo"
	"github.com/temirov/gitguard/internal/shared"
)

const (
	groupUseNameConstant              = "publish"
	groupShortDescriptionConstant     = "Commit, tag, and check out release state"
	groupLongDescriptionConstant      = "publish stages and commits selected paths, pushes them to the configured remote, and manages annotated release tags."
	cleanUseConstant                  = "clean [path...]"
	cleanShortDescriptionConstant     = "Report whether the paths have pending changes"
	commitUseConstant                 = "commit <path>..."
	commitShortDescriptionConstant    = "Commit the paths and push the current branch"
	commitExampleConstant             = "gitguard publish commit CHANGELOG.md version.txt --message 'Release 1.4.0'"
	tagUseConstant                    = "tag <name>"
	tagShortDescriptionConstant       = "Create an annotated tag and push it"
	tagsUseNameConstant               = "tags"
	tagsShortDescriptionConstant      = "List local tags"
	checkoutUseConstant               = "checkout <tag>"
	checkoutShortDescriptionConstant  = "Check out a tag as a detached HEAD"
	logUseNameConstant                = "log"
	logShortDescriptionConstant       = "Print the subjects of the most recent commits"
	messageFlagNameConstant           = "message"
	messageFlagShorthandConstant      = "m"
	commitMessageFlagUsageConstant    = "Commit message"
	tagMessageFlagUsageConstant       = "Tag annotation (defaults to \"Release <name>\")"
	limitFlagNameConstant             = "limit"
	limitFlagUsageConstant            = "Number of commits to show"
	defaultLogLimitConstant           = 10
	cleanStateMessageConstant         = "clean"
	dirtyStateMessageConstant         = "dirty"
	committedMessageTemplateConstant  = "committed %s and pushed to %s"
	nothingToCommitTemplateConstant   = "nothing to commit for %s"
	taggedMessageTemplateConstant     = "tagged %s and pushed to %s"
	checkedOutMessageTemplateConstant = "checked out %s"
	pathListSeparatorConstant         = ", "
	commitSkippedLogMessageConstant   = "commit skipped; paths are clean"
	logFieldRepositoryPathConstant    = "repository_path"
	logFieldPathsConstant             = "paths"
)

// CommandName is the name of the publish command group.
const CommandName = groupUseNameConstant

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the publish command group.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() shared.RepositoryConfiguration
}

// Build constructs the publish command and its subcommands.
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

	cleanCommand := &cobra.Command{
		Use:   cleanUseConstant,
		Short: cleanShortDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
		RunE:  builder.runClean,
	}

	commitCommand := &cobra.Command{
		Use:     commitUseConstant,
		Short:   commitShortDescriptionConstant,
		Example: commitExampleConstant,
		Args:    cobra.MinimumNArgs(1),
		RunE:    builder.runCommit,
	}
	commitCommand.Flags().StringP(messageFlagNameConstant, messageFlagShorthandConstant, "", commitMessageFlagUsageConstant)
	if markError := commitCommand.MarkFlagRequired(messageFlagNameConstant); markError != nil {
		return nil, markError
	}

	tagCommand := &cobra.Command{
		Use:   tagUseConstant,
		Short: tagShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runTag,
	}
	tagCommand.Flags().StringP(messageFlagNameConstant, messageFlagShorthandConstant, "", tagMessageFlagUsageConstant)

	tagsCommand := &cobra.Command{
		Use:   tagsUseNameConstant,
		Short: tagsShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runTags,
	}

	checkoutCommand := &cobra.Command{
		Use:   checkoutUseConstant,
		Short: checkoutShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runCheckout,
	}

	logCommand := &cobra.Command{
		Use:   logUseNameConstant,
		Short: logShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runLog,
	}
	logCommand.Flags().Int(limitFlagNameConstant, defaultLogLimitConstant, limitFlagUsageConstant)

	groupCommand.AddCommand(cleanCommand, commitCommand, tagCommand, tagsCommand, checkoutCommand, logCommand)
	return groupCommand, nil
}

func (builder *CommandBuilder) runClean(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	clean, cleanError := manager.CheckCleanPaths(command.Context(), configuration.RepositoryPath, arguments)
	if cleanError != nil {
		return cleanError
	}

	state := dirtyStateMessageConstant
	if clean {
		state = cleanStateMessageConstant
	}
	fmt.Fprintln(command.OutOrStdout(), state)
	return nil
}

func (builder *CommandBuilder) runCommit(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	commitMessage, flagError := command.Flags().GetString(messageFlagNameConstant)
	if flagError != nil {
		return flagError
	}

	committed, commitError := manager.Commit(command.Context(), gitrepo.CommitOptions{
		RepositoryPath: configuration.RepositoryPath,
		Message:        commitMessage,
		Paths:          arguments,
		RemoteName:     configuration.RemoteName,
	})
	if commitError != nil {
		return commitError
	}

	pathLabel := strings.Join(arguments, pathListSeparatorConstant)
	if !committed {
		builder.environment().Logger().Info(
			commitSkippedLogMessageConstant,
			zap.String(logFieldRepositoryPathConstant, configuration.RepositoryPath),
			zap.Strings(logFieldPathsConstant, arguments),
		)
		message := fmt.Sprintf(nothingToCommitTemplateConstant, pathLabel)
		fmt.Fprintln(command.OutOrStdout(), message)
		return nil
	}

	message := fmt.Sprintf(committedMessageTemplateConstant, pathLabel, configuration.RemoteName)
	fmt.Fprintln(command.OutOrStdout(), message)
	return nil
}

func (builder *CommandBuilder) runTag(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	tagMessage, flagError := command.Flags().GetString(messageFlagNameConstant)
	if flagError != nil {
		return flagError
	}

	tagName := strings.TrimSpace(arguments[0])
	if tagError := manager.Tag(command.Context(), gitrepo.TagOptions{
		RepositoryPath: configuration.RepositoryPath,
		TagName:        tagName,
		Message:        tagMessage,
		RemoteName:     configuration.RemoteName,
	}); tagError != nil {
		return tagError
	}

	message := fmt.Sprintf(taggedMessageTemplateConstant, tagName, configuration.RemoteName)
	fmt.Fprintln(command.OutOrStdout(), message)
	return nil
}

func (builder *CommandBuilder) runTags(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	tags, listError := manager.ListTags(command.Context(), configuration.RepositoryPath)
	if listError != nil {
		return listError
	}
	for _, tag := range tags {
		fmt.Fprintln(command.OutOrStdout(), tag)
	}
	return nil
}

func (builder *CommandBuilder) runCheckout(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	tagName := strings.TrimSpace(arguments[0])
	if checkoutError := manager.Checkout(command.Context(), configuration.RepositoryPath, tagName); checkoutError != nil {
		return checkoutError
	}

	message := fmt.Sprintf(checkedOutMessageTemplateConstant, tagName)
	fmt.Fprintln(command.OutOrStdout(), message)
	return nil
}

func (builder *CommandBuilder) runLog(command *cobra.Command, arguments []string) error {
	manager, configuration, resolveError := builder.environment().RepositoryManager()
	if resolveError != nil {
		return resolveError
	}

	limit, flagError := command.Flags().GetInt(limitFlagNameConstant)
	if flagError != nil {
		return flagError
	}

	subjects, logError := manager.RecentCommitSubjects(command.Context(), configuration.RepositoryPath, limit)
	if logError != nil {
		return logError
	}
	for _, subject := range subjects {
		fmt.Fprintln(command.OutOrStdout(), subject)
	}
	return nil
}

func (builder *CommandBuilder) environment() dependencies.CommandEnvironment {
	return dependencies.CommandEnvironment{
		LoggerProvider:               builder.LoggerProvider,
		GitExecutor:                  builder.GitExecutor,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
	}
}
