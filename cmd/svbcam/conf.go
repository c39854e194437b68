package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"svbcam/internal/config"
)

func newMkconfCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkconf",
		Short: "Write the current configuration, defaults included, to the config file",
		Long: `mkconf writes the configuration in effect to the --config path. There is no need to
do this unless you want to start a config file from the prepopulated defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(a.configPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := config.Write(f, a.cfg); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.configPath)
			return nil
		},
	}
}

func newConfCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conf",
		Short: "Print the configuration in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Write(cmd.OutOrStdout(), a.cfg)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version works without a readable config
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "svbcam version %v\n", Version)
		},
	}
}
