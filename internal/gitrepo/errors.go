package gitrepo

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	statusMismatchExpectedHeaderConstant = "Expected Git status to be:\n"
	statusMismatchActualHeaderConstant   = "but it currently is:\n"
	statusLineIndentConstant             = "  "
	statusLineSeparatorConstant          = "\n"
	expectedStatusDiffLabelConstant      = "expected"
	actualStatusDiffLabelConstant        = "actual"
)

// StatusMismatchError reports a repository status that differs from the expected lines.
type StatusMismatchError struct {
	Expected []string
	Actual   []string
}

// Error lists both sequences, one indented line per entry.
func (mismatch StatusMismatchError) Error() string {
	var builder strings.Builder
	builder.WriteString(statusMismatchExpectedHeaderConstant)
	builder.WriteString(indentStatusLines(mismatch.Expected))
	builder.WriteString(statusLineSeparatorConstant)
	builder.WriteString(statusMismatchActualHeaderConstant)
	builder.WriteString(indentStatusLines(mismatch.Actual))
	return builder.String()
}

// Diff renders a unified diff from the expected to the actual status.
func (mismatch StatusMismatchError) Diff() string {
	unifiedDiff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(joinStatusLines(mismatch.Expected)),
		B:        difflib.SplitLines(joinStatusLines(mismatch.Actual)),
		FromFile: expectedStatusDiffLabelConstant,
		ToFile:   actualStatusDiffLabelConstant,
		Context:  len(mismatch.Expected) + len(mismatch.Actual),
	}
	diffText, diffError := difflib.GetUnifiedDiffString(unifiedDiff)
	if diffError != nil {
		return ""
	}
	return diffText
}

func indentStatusLines(lines []string) string {
	indented := make([]string, 0, len(lines))
	for _, line := range lines {
		indented = append(indented, statusLineIndentConstant+line)
	}
	return strings.Join(indented, statusLineSeparatorConstant)
}

func joinStatusLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, statusLineSeparatorConstant) + statusLineSeparatorConstant
}
