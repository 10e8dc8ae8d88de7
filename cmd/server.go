package cmd

import (
	"context"
	"time"

	"github.com/cargoline/apiserver/config"
	"github.com/cargoline/apiserver/internal/logger"
	"github.com/cargoline/apiserver/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var shutdownTimeout time.Duration

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the cargoline backend server",
	Long: `Starts the cargoline backend server. Usage:

	cargoline server
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger.Setup(cfg.Log)

		ctx := cmd.Context()
		srv, err := server.New(ctx, cfg)
		if err != nil {
			log.Error().Err(err).Msg("failed to start server")
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(ctx)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				log.Error().Err(err).Msg("server error")
			}
			_ = srv.Shutdown(context.Background())
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "time allowed for in-flight requests on shutdown")
}
