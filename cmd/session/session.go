// Package session implements the engine session smoke-test command.
package session

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pans/seld-go/internal/conf"
	"github.com/pans/seld-go/internal/experiment"
	"github.com/pans/seld-go/internal/logging"
)

// Command creates a new command that brings up the full experiment context,
// including a real engine session with the tracker scripts on its path, then
// shuts it down again. Used to verify a deployment end to end.
func Command(settings *conf.Settings) *cobra.Command {
	var eval string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Bring up an engine session and shut it down again",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			expCtx, err := experiment.SetupDefault(ctx, settings)
			if err != nil {
				return fmt.Errorf("experiment setup failed: %w", err)
			}
			defer func() {
				if err := expCtx.Close(); err != nil {
					logging.Warn("engine session close failed", "error", err)
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "engine session ready, scripts on path: %s\n", settings.Engine.ScriptDir)
			fmt.Fprintf(cmd.OutOrStdout(), "label scheme: %d classes, undefined class ID %d\n",
				expCtx.Labels.NumClasses, expCtx.Labels.UndefinedClassID)

			if eval != "" {
				if err := expCtx.Session.Eval(ctx, eval); err != nil {
					return fmt.Errorf("eval failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "eval ok\n")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&eval, "eval", "", "Command to evaluate in the session before shutdown")

	return cmd
}
