package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitguard/internal/gitrepo"
	"github.com/temirov/gitguard/internal/guard"
	"github.com/temirov/gitguard/internal/publish"
	"github.com/temirov/gitguard/internal/shared"
	"github.com/temirov/gitguard/internal/utils"
	flagutils "github.com/temirov/gitguard/internal/utils/flags"
)

const (
	applicationNameConstant                 = "gitguard"
	applicationShortDescriptionConstant     = "Guard and publish release state in a git repository"
	applicationLongDescriptionConstant      = "gitguard verifies that a git work tree is in an exact expected state and publishes release changes: committing selected paths, pushing, tagging, and checking out tags."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagDescriptionConstant         = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagDescriptionConstant        = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	repositoryConfigurationKeyConstant      = "repository"
	environmentPrefixConstant               = "GITGUARD"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	userConfigurationDirectoryNameConstant  = "gitguard"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationRepositoryFieldConstant    = "repository_path"
	configurationRemoteFieldConstant        = "remote"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common     ApplicationCommonConfiguration `mapstructure:"common"`
	Repository shared.RepositoryConfiguration `mapstructure:"repository"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the cobra root command, configuration loader, and logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	repositoryFlagValues  *flagutils.RepositoryFlagValues
	gitExecutor           gitrepo.GitExecutor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() (*Application, error) {
	return newApplication(nil)
}

func newApplication(gitExecutor gitrepo.GitExecutor) (*Application, error) {
	application := &Application{
		configurationLoader: utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
			ConfigurationName:     configurationNameConstant,
			ConfigurationType:     configurationTypeConstant,
			EnvironmentPrefix:     environmentPrefixConstant,
			SearchPaths:           configurationSearchPaths(),
			EmbeddedConfiguration: EmbeddedDefaultConfiguration(),
		}),
		loggerFactory: utils.NewLoggerFactory(),
		logger:        zap.NewNop(),
		configuration: ApplicationConfiguration{Repository: shared.DefaultRepositoryConfiguration()},
		gitExecutor:   gitExecutor,
	}

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	rootCommand.SetContext(context.Background())
	rootCommand.SetVersionTemplate(versionTemplateConstant)

	persistentFlagSet := rootCommand.PersistentFlags()
	persistentFlagSet.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlagSet.StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), utils.SupportedLogLevels(), logLevelFlagDescriptionConstant),
	)
	persistentFlagSet.StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), utils.SupportedLogFormats(), logFormatFlagDescriptionConstant),
	)
	application.repositoryFlagValues = flagutils.BindRepositoryFlags(rootCommand, flagutils.RepositoryFlagValues{})

	guardBuilder := guard.CommandBuilder{
		LoggerProvider:               application.currentLogger,
		GitExecutor:                  application.gitExecutor,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.repositoryConfiguration,
	}
	guardCommand, guardBuildError := guardBuilder.Build()
	if guardBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, guard.CommandName, guardBuildError)
	}
	rootCommand.AddCommand(guardCommand)

	publishBuilder := publish.CommandBuilder{
		LoggerProvider:               application.currentLogger,
		GitExecutor:                  application.gitExecutor,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.repositoryConfiguration,
	}
	publishCommand, publishBuildError := publishBuilder.Build()
	if publishBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, publish.CommandName, publishBuildError)
	}
	rootCommand.AddCommand(publishCommand)

	application.rootCommand = rootCommand
	return application, nil
}

// Execute runs the command hierarchy and flushes the logger.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	application, creationError := NewApplication()
	if creationError != nil {
		return creationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range shared.DefaultConfigurationValues(repositoryConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration := ApplicationConfiguration{}
	metadata, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &loadedConfiguration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	loadedConfiguration.Common.LogLevel = flagutils.OverrideString(command, logLevelFlagNameConstant, application.logLevelFlagValue, loadedConfiguration.Common.LogLevel)
	loadedConfiguration.Common.LogFormat = flagutils.OverrideString(command, logFormatFlagNameConstant, application.logFormatFlagValue, loadedConfiguration.Common.LogFormat)
	loadedConfiguration.Repository.RepositoryPath = flagutils.OverrideString(command, flagutils.RepositoryFlagName, application.repositoryFlagValues.Path, loadedConfiguration.Repository.RepositoryPath)
	loadedConfiguration.Repository.RemoteName = flagutils.OverrideString(command, flagutils.RemoteFlagName, application.repositoryFlagValues.Remote, loadedConfiguration.Repository.RemoteName)
	loadedConfiguration.Repository = loadedConfiguration.Repository.Sanitize()

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(loadedConfiguration.Common.LogLevel),
		utils.LogFormat(loadedConfiguration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.configuration = loadedConfiguration
	application.configurationMetadata = metadata
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, loadedConfiguration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, loadedConfiguration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, metadata.ConfigFileUsed),
		zap.String(configurationRepositoryFieldConstant, loadedConfiguration.Repository.RepositoryPath),
		zap.String(configurationRemoteFieldConstant, loadedConfiguration.Repository.RemoteName),
	)

	return nil
}

func (application *Application) currentLogger() *zap.Logger {
	return application.logger
}

func (application *Application) repositoryConfiguration() shared.RepositoryConfiguration {
	return application.configuration.Repository
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return utils.NormalizeLogFormat(application.configuration.Common.LogFormat) == utils.LogFormatConsole
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	userConfigurationDirectory, directoryError := os.UserConfigDir()
	if directoryError == nil && len(strings.TrimSpace(userConfigurationDirectory)) > 0 {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant))
	}
	return searchPaths
}
