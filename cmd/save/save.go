// Package save implements the configuration persistence command.
package save

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pans/seld-go/internal/conf"
)

// Command creates a new command that writes the effective configuration,
// after environment variables and flags have been merged, back to the
// config file.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.SaveSettings(); err != nil {
				return fmt.Errorf("error saving configuration: %w", err)
			}

			configPath, err := conf.FindConfigFile()
			if err != nil {
				return fmt.Errorf("error locating saved config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", configPath)
			return nil
		},
	}
}
