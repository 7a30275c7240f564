// Package validate implements the configuration validation command.
package validate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pans/seld-go/internal/conf"
	"github.com/pans/seld-go/internal/labels"
)

// Command creates a new command that checks the configuration without
// starting the external engine.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the experiment configuration",
		Long:  "Check the signal parameters, dataset paths and label vocabulary without starting the external engine.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, settings)
		},
	}

	return cmd
}

// runValidate reports each validation step separately so a failing deployment
// can be diagnosed from the output alone.
func runValidate(cmd *cobra.Command, settings *conf.Settings) error {
	failed := false

	report := func(step string, err error) {
		if err != nil {
			failed = true
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", step, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", step)
	}

	report("settings", conf.ValidateSettings(settings))
	report("paths", conf.ValidatePaths(settings))

	// Resolve the label scheme the same way the bootstrap does
	provider := labels.DefaultProvider(settings.Labels.File)
	_, err := labels.New(settings.Labels.NumClasses, provider)
	report("labels", err)
	if err != nil && settings.Labels.File == "" {
		if files, listErr := labels.AvailableEmbeddedFiles(); listErr == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "     embedded vocabularies: %s\n", strings.Join(files, ", "))
		}
	}

	if failed {
		return fmt.Errorf("configuration validation failed")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid\n")
	return nil
}
