package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant           = "logger not configured"
	commandRunnerNotConfiguredMessageConstant    = "command runner not configured"
	commandFailedTemplateConstant                = "%s returned non-zero status (exit code %d):\n%s"
	commandExecutionFailedTemplateConstant       = "%s could not be executed: %v"
	gitCommandConfigurationErrorTemplateConstant = "invalid git command %q: %w"
	outputSeparatorConstant                      = "\n"
)

// CommandName identifies the logical tool a command targets.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = "git"

// ErrLoggerNotConfigured indicates the executor was built without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was built without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandDetails describes the arguments and environment of one invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand is a single external process invocation.
type ShellCommand struct {
	Name             CommandName
	Executable       string
	LeadingArguments []string
	Details          CommandDetails
}

// ExecutableName returns the binary to launch, falling back to the logical command name.
func (command ShellCommand) ExecutableName() string {
	if len(strings.TrimSpace(command.Executable)) > 0 {
		return command.Executable
	}
	return string(command.Name)
}

// ProcessArguments returns the arguments passed to the executable, leading arguments first.
func (command ShellCommand) ProcessArguments() []string {
	processArguments := make([]string, 0, len(command.LeadingArguments)+len(command.Details.Arguments))
	processArguments = append(processArguments, command.LeadingArguments...)
	processArguments = append(processArguments, command.Details.Arguments...)
	return processArguments
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CombinedOutput joins standard output and standard error.
func (result ExecutionResult) CombinedOutput() string {
	parts := make([]string, 0, 2)
	for _, output := range []string{result.StandardOutput, result.StandardError} {
		trimmed := strings.TrimRight(output, outputSeparatorConstant)
		if len(trimmed) > 0 {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, outputSeparatorConstant)
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error renders the command line together with its captured output.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedTemplateConstant, FormatCommandLine(failure.Command), failure.Result.ExitCode, failure.Result.CombinedOutput())
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, FormatCommandLine(failure.Command), failure.Cause)
}

// Unwrap exposes the underlying failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ExecutorOptions tunes how a ShellExecutor launches and reports commands.
type ExecutorOptions struct {
	HumanReadableLogging bool
	GitCommandLine       string
}

// ShellExecutor runs external commands and reports their lifecycle.
type ShellExecutor struct {
	logger         *zap.Logger
	runner         CommandRunner
	eventObserver  CommandEventObserver
	gitExecutable  string
	gitLeadingArgs []string
}

// NewShellExecutor constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ExecutorOptions) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:        logger,
		runner:        runner,
		gitExecutable: string(CommandGit),
	}

	if len(strings.TrimSpace(options.GitCommandLine)) > 0 {
		executable, leadingArguments, parseError := ParseCommandLine(options.GitCommandLine)
		if parseError != nil {
			return nil, fmt.Errorf(gitCommandConfigurationErrorTemplateConstant, options.GitCommandLine, parseError)
		}
		executor.gitExecutable = executable
		executor.gitLeadingArgs = leadingArguments
	}

	if options.HumanReadableLogging {
		executor.eventObserver = newHumanReadableCommandEventLogger(logger)
	} else {
		executor.eventObserver = newStructuredCommandEventLogger(logger)
	}

	return executor, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{
		Name:             CommandGit,
		Executable:       executor.gitExecutable,
		LeadingArguments: append([]string{}, executor.gitLeadingArgs...),
		Details:          details,
	})
}

// Execute runs an arbitrary command and converts non-zero exits into CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	observer := executor.eventObserver
	if observer == nil {
		observer = noopCommandEventObserver{}
	}

	observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	return executionResult, nil
}
