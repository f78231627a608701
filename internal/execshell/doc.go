// Package execshell provides structured helpers for invoking git.
//
// ShellExecutor wraps a CommandRunner with zap lifecycle logging and turns
// non-zero exits into CommandFailedError values that carry the command line
// and its captured output. OSCommandRunner launches processes through os/exec
// with an explicit argument vector, so user-supplied values never reach a
// shell.
package execshell
