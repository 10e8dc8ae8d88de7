package cmd

import (
	"github.com/cargoline/apiserver/config"
	"github.com/cargoline/apiserver/internal/db"
	"github.com/cargoline/apiserver/internal/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateDownSteps int

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger.Setup(cfg.Log)

		if err := db.MigrateUp(cfg.PostgresURL()); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger.Setup(cfg.Log)

		if err := db.MigrateDown(cfg.PostgresURL(), migrateDownSteps); err != nil {
			return err
		}
		log.Info().Int("steps", migrateDownSteps).Msg("migrations rolled back")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back")
}
