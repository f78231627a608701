package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplateConstant = "<%s>"
	choiceSeparatorConstant           = "|"
	choiceUsageTemplateConstant       = "%s %s"
)

// FormatChoiceUsage renders a usage string listing the accepted values with the default in upper case.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	renderedChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, seen := seenChoices[normalizedChoice]; seen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			renderedChoices = append(renderedChoices, strings.ToUpper(normalizedChoice))
			continue
		}
		renderedChoices = append(renderedChoices, normalizedChoice)
	}

	placeholder := fmt.Sprintf(choicePlaceholderTemplateConstant, strings.Join(renderedChoices, choiceSeparatorConstant))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return placeholder
	}
	return fmt.Sprintf(choiceUsageTemplateConstant, trimmedDescription, placeholder)
}
