package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"medledger/internal/platform/postgres"
	"medledger/internal/walletauth"
	"medledger/pkg/domain"
)

func migrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			ctx := cmd.Context()
			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := postgres.Migrate(ctx, db)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			cmd.Printf("Applied %d migration(s).\n", applied)
			return nil
		},
	}
}

func rosterCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the doctor roster",
	}

	var (
		id   uint64
		name string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a (doctor id, name) roster entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			if cfg.Redis.URL == "" {
				return fmt.Errorf("REDIS_URL is required: an in-memory roster would not outlive this command")
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.identity.RegisterDoctorRoster(ctx, domain.DoctorID(id), name); err != nil {
				return err
			}
			cmd.Printf("Roster entry %d %q added.\n", id, name)
			return nil
		},
	}
	addCmd.Flags().Uint64Var(&id, "id", 0, "doctor id")
	addCmd.Flags().StringVar(&name, "name", "", "doctor name as it must be registered")
	_ = addCmd.MarkFlagRequired("id")
	_ = addCmd.MarkFlagRequired("name")
	cmd.AddCommand(addCmd)
	return cmd
}

func tokenCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage wallet session tokens",
	}

	var (
		wallet string
		ttl    time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a session token for a wallet address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			addr, err := domain.ParseWalletAddress(wallet)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.SessionTTL
			}
			sessions := walletauth.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
			token, err := sessions.IssueToken(addr, ttl)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}
	issueCmd.Flags().StringVar(&wallet, "wallet", "", "EIP-55 wallet address")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default SESSION_TTL)")
	_ = issueCmd.MarkFlagRequired("wallet")
	cmd.AddCommand(issueCmd)
	return cmd
}
