package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/search"
	"github.com/verdanthq/verdant/internal/seed"
	"github.com/verdanthq/verdant/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		fmt.Println("Migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed development data",
	Long:  "Populates the database with fake users, posts, follows, comments, likes, shops, and events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		seeder := seed.NewSeeder(database.DB)
		if err := seeder.SeedDev(); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
		fmt.Println("Development data seeded")
		return nil
	},
}

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <username>",
	Short: "Grant admin rights to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		defer database.Close()

		username := args[0]
		result := database.DB.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?)", username).
			Update("is_admin", true)
		if result.Error != nil {
			return fmt.Errorf("promote user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("no user with username %q", username)
		}
		fmt.Printf("User %s is now an admin\n", username)
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex-search",
	Short: "Rebuild the search indices from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		defer database.Close()

		client, err := search.NewClient()
		if err != nil {
			return fmt.Errorf("connect to elasticsearch: %w", err)
		}

		svc := search.NewService(database.DB, client)
		if err := svc.ReindexAll(context.Background(), database.DB); err != nil {
			return fmt.Errorf("reindex: %w", err)
		}
		fmt.Println("Search indices rebuilt")
		return nil
	},
}

func connect() error {
	if err := logger.Initialize("info", ""); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	if err := database.Initialize(); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	return nil
}
