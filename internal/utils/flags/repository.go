// Package flags binds the persistent flags shared by gitguard commands.
package flags

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// RepositoryFlagName names the flag selecting the work tree.
	RepositoryFlagName = "repository"
	// RepositoryFlagUsage describes the repository flag.
	RepositoryFlagUsage = "Path to the git work tree to operate on"
	// RemoteFlagName names the flag selecting the push remote.
	RemoteFlagName = "remote"
	// RemoteFlagUsage describes the remote flag.
	RemoteFlagUsage = "Remote that receives pushed commits and tags"
)

// RepositoryFlagValues stores the values bound to the repository flags.
type RepositoryFlagValues struct {
	Path   string
	Remote string
}

// BindRepositoryFlags attaches the repository and remote flags to the command's persistent flag set.
func BindRepositoryFlags(command *cobra.Command, defaults RepositoryFlagValues) *RepositoryFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(RepositoryFlagName) == nil {
		persistentFlagSet.StringVar(&values.Path, RepositoryFlagName, defaults.Path, RepositoryFlagUsage)
	}
	if persistentFlagSet.Lookup(RemoteFlagName) == nil {
		persistentFlagSet.StringVar(&values.Remote, RemoteFlagName, defaults.Remote, RemoteFlagUsage)
	}
	return &values
}

// Changed reports whether the named flag was set on the command or any of its ancestors.
func Changed(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.Flags(),
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}

// OverrideString returns the trimmed flag value when the flag was set and non-blank, otherwise the configured value.
func OverrideString(command *cobra.Command, flagName string, flagValue string, configuredValue string) string {
	if !Changed(command, flagName) {
		return configuredValue
	}
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) == 0 {
		return configuredValue
	}
	return trimmedFlagValue
}
