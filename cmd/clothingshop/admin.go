package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darrenak403/clothingshop-be/internal/bootstrap"
	"github.com/darrenak403/clothingshop-be/internal/http/server"
	"github.com/darrenak403/clothingshop-be/internal/store/pg"
	"github.com/darrenak403/clothingshop-be/migrations/postgres"
)

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending postgres migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			conn, err := server.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			pgConn, err := pg.AsConn(conn)
			if err != nil {
				return fmt.Errorf("migrate needs the postgres driver: %w", err)
			}
			res, err := pg.NewMigrator(postgres.FS, postgres.Dir).Run(cmd.Context(), pgConn.Pool())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %v, skipped %d, took %s\n", res.Applied, len(res.Skipped), res.Duration)
			return nil
		},
	}
}

func newSeedCmd(load loader) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the first administrator if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			conn, err := server.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			hasher, policy := server.NewHasher(cfg)
			u, created, err := bootstrap.EnsureAdmin(cmd.Context(), bootstrap.AdminConfig{
				Credentials: conn.Credentials(),
				Hasher:      hasher,
				Policy:      policy,
				FullName:    name,
				Email:       email,
				Password:    password,
			})
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", u.Email, u.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "account %s already exists\n", u.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "admin-name", envOr("SEED_ADMIN_NAME", ""), "full name (env SEED_ADMIN_NAME)")
	cmd.Flags().StringVar(&email, "admin-email", envOr("SEED_ADMIN_EMAIL", ""), "email (env SEED_ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "admin-password", envOr("SEED_ADMIN_PASSWORD", ""), "password; prompted when empty (env SEED_ADMIN_PASSWORD)")
	return cmd
}

func newUserCmd(load loader) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Account maintenance",
	}

	toggle := func(use string, active bool) *cobra.Command {
		var email, reason string
		c := &cobra.Command{
			Use:   use,
			Short: use + " an account by email",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				conn, err := server.OpenStore(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer conn.Close()

				u, err := bootstrap.SetActiveByEmail(cmd.Context(), conn.Credentials(), email, active, reason)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", u.Email, u.IsActive)
				return nil
			},
		}
		c.Flags().StringVar(&email, "email", "", "account email")
		_ = c.MarkFlagRequired("email")
		if !active {
			c.Flags().StringVar(&reason, "reason", "", "lock reason stored on the account")
		}
		return c
	}

	user.AddCommand(toggle("activate", true), toggle("deactivate", false))
	return user
}
