package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pans/seld-go/cmd/dump"
	"github.com/pans/seld-go/cmd/save"
	"github.com/pans/seld-go/cmd/session"
	"github.com/pans/seld-go/cmd/validate"
	"github.com/pans/seld-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "seld",
		Short:         "seld-go experiment pipeline CLI",
		Long:          "Configure and bootstrap the sound event localization and detection experiment pipeline.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		validate.Command(settings),
		dump.Command(settings),
		session.Command(settings),
		save.Command(),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Dataset.AudioDir, "audiodir", viper.GetString("dataset.audiodir"), "Directory with raw audio recordings")
	rootCmd.PersistentFlags().StringVar(&settings.Dataset.STFTDir, "stftdir", viper.GetString("dataset.stftdir"), "Directory with precomputed STFT frames")
	rootCmd.PersistentFlags().StringVar(&settings.Dataset.MetadataDir, "metadatadir", viper.GetString("dataset.metadatadir"), "Directory with annotation CSV files")
	rootCmd.PersistentFlags().StringVar(&settings.Engine.Binary, "engine", viper.GetString("engine.binary"), "External engine executable")
	rootCmd.PersistentFlags().StringVar(&settings.Engine.ScriptDir, "scriptdir", viper.GetString("engine.scriptdir"), "Tracker script directory registered on the engine search path")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
