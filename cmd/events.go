package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/cargoline/apiserver/config"
	"github.com/cargoline/apiserver/internal/logger"
	"github.com/cargoline/apiserver/internal/mq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect domain events on the message broker",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch <channel>",
	Short: "Log every event published to a channel",
	Long: `Subscribes to a channel (for example "users" or "brands") on the
configured MQ backend and logs each event until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger.Setup(cfg.Log)

		if cfg.MQ.Backend == "" || cfg.MQ.Backend == config.MQBackendNone {
			return fmt.Errorf("MQ_BACKEND is %q; set rabbitmq or pubsub", cfg.MQ.Backend)
		}

		ctx := cmd.Context()
		backend, err := mq.NewBackend(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		defer backend.Close()

		channel := args[0]
		log.Info().Str("channel", channel).Str("backend", cfg.MQ.Backend).Msg("watching events")

		err = backend.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
			event, err := mq.DecodeEvent(msg)
			if err != nil {
				// Undecodable messages would be redelivered forever.
				log.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed event")
				return nil
			}
			log.Info().
				Str("message_id", msg.ID).
				Str("event", event.Type).
				Time("occurred_at", event.OccurredAt).
				RawJSON("payload", event.Payload).
				Msg("event")
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsWatchCmd)
}
