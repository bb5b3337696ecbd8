package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"distrust-bot/internal/config"
	"distrust-bot/internal/service"
)

func newTokenCmd() *cobra.Command {
	var (
		adapterID string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a chat adapter (uses JWT_SECRET)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = cfg.JWTAdapterTTL
			}
			jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, ttl)
			token, expiresAt, err := jwtSvc.IssueAdapterToken(adapterID)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&adapterID, "adapter", "discord", "adapter identifier stored in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_ADAPTER_TTL)")
	cmd.AddCommand(newTokenRevokeCmd())
	return cmd
}

func newTokenRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke an adapter token in the shared redis list (uses JWT_SECRET and REDIS_ADDR)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if cfg.RedisAddr == "" {
				return errors.New("REDIS_ADDR is not set; revocations live in redis")
			}
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			defer client.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}

			jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAdapterTTL).
				WithRevocations(service.NewRedisTokenRevocationStore(client))
			if err := jwtSvc.RevokeAdapterToken(strings.TrimSpace(args[0])); err != nil {
				return fmt.Errorf("revoke token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "revoked")
			return nil
		},
	}
}
