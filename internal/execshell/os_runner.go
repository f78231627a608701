package execshell

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
)

const environmentAssignmentSeparatorConstant = "="

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command as an argument vector; no shell is involved.
// A non-zero exit is reported through ExitCode, while a process that never started is returned as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	var capturedOutput, capturedError bytes.Buffer
	process := buildProcess(executionContext, command, &capturedOutput, &capturedError)

	exitCode := 0
	if runError := process.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		exitCode = exitError.ExitCode()
	}

	return ExecutionResult{
		StandardOutput: capturedOutput.String(),
		StandardError:  capturedError.String(),
		ExitCode:       exitCode,
	}, nil
}

func buildProcess(executionContext context.Context, command ShellCommand, capturedOutput *bytes.Buffer, capturedError *bytes.Buffer) *exec.Cmd {
	process := exec.CommandContext(executionContext, command.ExecutableName(), command.ProcessArguments()...)
	process.Dir = command.Details.WorkingDirectory
	process.Stdout = capturedOutput
	process.Stderr = capturedError
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}
	return process
}

// mergeEnvironment replaces inherited variables named in overrides and appends the overrides in key order.
func mergeEnvironment(inherited []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(inherited)+len(overrides))
	for _, assignment := range inherited {
		variableName, _, _ := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if _, overridden := overrides[variableName]; overridden {
			continue
		}
		merged = append(merged, assignment)
	}
	for _, variableName := range slices.Sorted(maps.Keys(overrides)) {
		merged = append(merged, variableName+environmentAssignmentSeparatorConstant+overrides[variableName])
	}
	return merged
}
