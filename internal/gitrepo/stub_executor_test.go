package gitrepo_test

import (
	"context"

	"github.com/temirov/gitguard/internal/execshell"
)

type stubGitExecutor struct {
	recorded  []execshell.CommandDetails
	responses []stubGitResponse
}

type stubGitResponse struct {
	result execshell.ExecutionResult
	err    error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if len(executor.responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}

	next := executor.responses[0]
	executor.responses = executor.responses[1:]
	if next.err != nil {
		return execshell.ExecutionResult{}, next.err
	}
	return next.result, nil
}

func outputResponse(standardOutput string) stubGitResponse {
	return stubGitResponse{result: execshell.ExecutionResult{StandardOutput: standardOutput}}
}

func (executor *stubGitExecutor) recordedArguments() [][]string {
	arguments := make([][]string, 0, len(executor.recorded))
	for _, details := range executor.recorded {
		arguments = append(arguments, details.Arguments)
	}
	return arguments
}
