package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"genka/internal/amqp"
	"genka/internal/cli"
	"genka/internal/core"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print run-completed events from the message broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("event publishing is disabled: set GENKA_AMQP_URL")
			}
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := cli.SignalContext(cmd.Context(), a.logger)
			defer cancel()

			a.logger.Info("Watching run events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			err = client.ConsumeRunCompleted(ctx, func(msg *amqp.RunCompletedMessage) error {
				status := "OK"
				if !msg.Valid {
					status = fmt.Sprintf("NG(%d)", msg.FindingCount)
				}
				_, err := fmt.Fprintf(a.stdout, "%s %s %s items=%d amount=%s budget=%s %s review=%d\n",
					msg.Timestamp.Local().Format("2006-01-02 15:04:05"), msg.RunID, msg.Source, msg.Items,
					core.FormatYen(msg.Amount), core.FormatYen(msg.BudgetTotal), status, msg.ReviewCount)
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
