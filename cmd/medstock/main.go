package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/config"
	"github.com/sandp/medstock/internal/repo"
	"github.com/sandp/medstock/internal/service"
	pkgdb "github.com/sandp/medstock/pkg/db"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "medstock",
	Short: "Inventory, ordering and invoicing for a pharmaceutical distributor",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with KEY=value settings")
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func loadConfig() config.ServiceConfig {
	config.LoadEnvFile(envFile)
	return config.Load()
}

func openStore(cfg config.ServiceConfig) (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return pkgdb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := cfg.ValidateStore(); err != nil {
			return err
		}

		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		if err := repo.New(db).Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Println("schema is up to date")
		return nil
	},
}

var adminName string

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the first ADMIN account from ADMIN_EMAIL and ADMIN_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := cfg.ValidateStore(); err != nil {
			return err
		}
		if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
			return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
		}

		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		r := repo.New(db)
		if err := r.Migrate(cmd.Context()); err != nil {
			return err
		}
		users := &service.UserService{Repo: r}
		created, err := users.EnsureAdmin(cmd.Context(), adminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Printf("admin %s created", cfg.AdminEmail)
		} else {
			log.Printf("%s is already registered", cfg.AdminEmail)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name of the admin")
}
