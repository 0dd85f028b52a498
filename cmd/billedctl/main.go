// Command billedctl is the operator CLI of Billed: it creates accounts and
// seeds demo bills.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/billed/billed-app/internal/core/service"
	mongodb "github.com/billed/billed-app/internal/infrastructure/db/mongo"
	"github.com/billed/billed-app/internal/pkg/config"
	"github.com/billed/billed-app/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "billedctl",
	Short: "Billed operator command-line interface",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var addUserCmd = &cobra.Command{
	Use:   "adduser",
	Short: "Create an Employee or Admin account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		userType, _ := cmd.Flags().GetString("type")

		return withDatabase(cmd.Context(), func(db *mongo.Database, cfg *config.Config) error {
			auth := service.NewAuthService(mongodb.NewAuthRepository(db), cfg.JWTSecret, cfg.Session.TTL)
			user, err := auth.Register(cmd.Context(), email, password, userType)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s account %s (%s)\n", user.Type, user.Email, user.ID)
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo bills for an employee",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")

		return withDatabase(cmd.Context(), func(db *mongo.Database, _ *config.Config) error {
			ids, err := seedBills(cmd.Context(), mongodb.NewBillRepository(db), email)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

func init() {
	addUserCmd.Flags().String("email", "", "account email")
	addUserCmd.Flags().String("password", "", "account password")
	addUserCmd.Flags().String("type", "Employee", "account type: Employee or Admin")
	_ = addUserCmd.MarkFlagRequired("email")
	_ = addUserCmd.MarkFlagRequired("password")

	seedCmd.Flags().String("email", "", "owner of the demo bills")
	_ = seedCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(addUserCmd, seedCmd)
}

func withDatabase(ctx context.Context, fn func(db *mongo.Database, cfg *config.Config) error) error {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr, Service: "billedctl"})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	return fn(db, cfg)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
