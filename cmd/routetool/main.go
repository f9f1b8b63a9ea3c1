package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	databaseURL string
	sqlitePath  string
)

var rootCmd = &cobra.Command{
	Use:           "routetool",
	Short:         "Operate the travel-time model store and run sequencing offline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres DSN (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "SQLite path used when no Postgres DSN is set (defaults to SQLITE_PATH)")

	rootCmd.AddCommand(newMigrateCmd(), newTrainCmd(), newPredictCmd(), newSequenceCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
