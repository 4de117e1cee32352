package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

// completeDogs returns a completion function for dog names.
func completeDogs(toComplete string) []string {
	if ctx == nil || ctx.DogRepo == nil {
		return nil
	}

	dogs, err := ctx.DogRepo.ListActive()
	if err != nil {
		return nil
	}

	var completions []string
	for _, d := range dogs {
		if strings.HasPrefix(d.Name, toComplete) {
			completions = append(completions, d.Name)
		}
	}
	return completions
}

// completeDogArgs handles completion for commands whose first argument
// is a dog name.
func completeDogArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeDogs(toComplete), cobra.ShellCompDirectiveNoFileComp
}
