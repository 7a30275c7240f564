// Package dump implements the effective-configuration dump command.
package dump

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pans/seld-go/internal/conf"
)

// Command creates a new command that prints the effective configuration as
// YAML, after defaults, config file, environment variables and flags have
// been merged.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("error marshaling settings to YAML: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
