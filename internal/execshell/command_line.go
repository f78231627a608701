package execshell

import (
	"errors"

	"github.com/google/shlex"
	"github.com/kballard/go-shellquote"
)

const emptyCommandLineMessageConstant = "command line is empty"

// ErrEmptyCommandLine indicates a configured command line contained no words.
var ErrEmptyCommandLine = errors.New(emptyCommandLineMessageConstant)

// ParseCommandLine splits a configured command line into the executable and its leading arguments.
func ParseCommandLine(commandLine string) (string, []string, error) {
	words, splitError := shlex.Split(commandLine)
	if splitError != nil {
		return "", nil, splitError
	}
	if len(words) == 0 {
		return "", nil, ErrEmptyCommandLine
	}
	return words[0], words[1:], nil
}

// FormatCommandLine renders a command as a shell-quoted line for diagnostics.
// The rendering is never executed by a shell.
func FormatCommandLine(command ShellCommand) string {
	words := append([]string{command.ExecutableName()}, command.ProcessArguments()...)
	return shellquote.Join(words...)
}
