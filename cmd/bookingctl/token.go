package main

import (
	"fmt"
	"time"

	"condobook/pkg/auth"
	"condobook/pkg/config"
	"condobook/pkg/model"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load("bookingctl")
			if ttl <= 0 {
				ttl = cfg.JWTTTL
			}

			token, err := auth.NewTokenManager(cfg.JWTSecret, ttl).Issue(model.Identity{
				ID:   userID,
				Role: model.Role(role),
			})
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	c.Flags().StringVar(&userID, "user", "", "user id placed in the subject claim")
	c.Flags().StringVar(&role, "role", string(model.RoleResident), "one of resident, staff, admin, security")
	c.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_TTL)")
	_ = c.MarkFlagRequired("user")
	return c
}
