package main

import (
	"fmt"
	"os"

	"github.com/Maxwellism/browserfakes/cmd/browserfakes/commands"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var debug bool
	opts := &commands.Options{Logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "browserfakes",
		Short:         "Check and inspect browser fake fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !debug {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			opts.Logger = logger
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewValidateCommand(opts),
		commands.NewInspectCommand(opts),
	)
	return rootCmd.Execute()
}
