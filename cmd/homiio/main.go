package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "homiio",
		Short:        "Homiio housing platform backend",
		SilenceUsage: true,
		// без подкоманды запускаем сервер
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, false)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to .env file (default: ./.env if present)")

	rootCmd.AddCommand(
		serveCmd(&envFile),
		migrateCmd(&envFile),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
