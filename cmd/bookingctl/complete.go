package main

import (
	"context"
	"fmt"
	"time"

	"condobook/internal/bootstrap"
	"condobook/pkg/config"

	"github.com/spf13/cobra"
)

func newCompleteCmd() *cobra.Command {
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "complete",
		Short: "Mark confirmed bookings whose end time has passed as completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load("bookingctl")
			cfg.SetStore()
			defer cfg.GracefulShutdown()

			services, err := bootstrap.NewServices(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := services.Close(); err != nil {
					cfg.Log.Error("Failed to close event publisher", "error", err)
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			completed, err := services.Bookings.CompleteElapsed(ctx)
			if err != nil {
				return fmt.Errorf("complete elapsed bookings: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "completed %d booking(s)\n", completed)
			return nil
		},
	}

	c.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the sweep")
	return c
}
