package main

import (
	"example.com/mastermind/internal/config"
	"example.com/mastermind/internal/migrate"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|redo|version]",
	Short: "Manage the Postgres schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}

		cfg, err := config.LoadFromEnv()
		if err != nil {
			return err
		}
		return migrate.Run(commandContext(cmd), cfg.Postgres.URL, cfg.Postgres.MigrationsDir, command, cfg.NewLogger())
	},
}
