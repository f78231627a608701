package execshell

import "go.uber.org/zap"

const (
	commandStartedLogMessageConstant   = "git command started"
	commandCompletedLogMessageConstant = "git command completed"
	commandFailedLogMessageConstant    = "git command failed"
	commandErroredLogMessageConstant   = "git command could not run"
	logFieldCommandLineConstant        = "command_line"
	logFieldWorkingDirectoryConstant   = "working_directory"
	logFieldExitCodeConstant           = "exit_code"
	logFieldStandardErrorConstant      = "stderr"
)

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports unexpected failures prior to receiving an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// structuredCommandEventLogger emits machine-readable zap fields for every lifecycle event.
type structuredCommandEventLogger struct {
	logger *zap.Logger
}

func newStructuredCommandEventLogger(logger *zap.Logger) *structuredCommandEventLogger {
	return &structuredCommandEventLogger{logger: logger}
}

func (eventLogger *structuredCommandEventLogger) CommandStarted(command ShellCommand) {
	eventLogger.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandLineConstant, FormatCommandLine(command)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (eventLogger *structuredCommandEventLogger) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		eventLogger.logger.Debug(
			commandCompletedLogMessageConstant,
			zap.String(logFieldCommandLineConstant, FormatCommandLine(command)),
			zap.Int(logFieldExitCodeConstant, result.ExitCode),
		)
		return
	}
	eventLogger.logger.Warn(
		commandFailedLogMessageConstant,
		zap.String(logFieldCommandLineConstant, FormatCommandLine(command)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, result.StandardError),
	)
}

func (eventLogger *structuredCommandEventLogger) CommandExecutionFailed(command ShellCommand, failure error) {
	eventLogger.logger.Error(
		commandErroredLogMessageConstant,
		zap.String(logFieldCommandLineConstant, FormatCommandLine(command)),
		zap.Error(failure),
	)
}

// humanReadableCommandEventLogger renders lifecycle events as sentences for console output.
type humanReadableCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandMessageFormatter
}

func newHumanReadableCommandEventLogger(logger *zap.Logger) *humanReadableCommandEventLogger {
	return &humanReadableCommandEventLogger{logger: logger, formatter: CommandMessageFormatter{}}
}

func (eventLogger *humanReadableCommandEventLogger) CommandStarted(command ShellCommand) {
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

func (eventLogger *humanReadableCommandEventLogger) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command, result))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

func (eventLogger *humanReadableCommandEventLogger) CommandExecutionFailed(command ShellCommand, failure error) {
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
