package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/langell/super-league-sub001/internal/database"
	"github.com/langell/super-league-sub001/internal/league"
	"github.com/spf13/cobra"
)

var (
	fixturePath string
	dbName      string
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Load a YAML league fixture into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := loadFixture(fixturePath)
		if err != nil {
			return err
		}

		db, teardown, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"))
		if err != nil {
			return err
		}
		defer teardown()

		summary, err := seed(cmd.Context(), league.New(db), fixture)
		if err != nil {
			return err
		}
		log.Info("Seeding complete", "league", summary.OrganizationID,
			"users", summary.Users, "rounds", summary.Rounds, "matches", summary.Matches)
		return nil
	},
}

func main() {
	log.Info("Starting database seeder...")
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	rootCmd.Flags().StringVar(&fixturePath, "fixture", "fixture.yaml", "Path to the league fixture")
	rootCmd.Flags().StringVar(&dbName, "db", envOr("DB_NAME", "league.db"), "Local SQLite database file, ignored when TURSO_PRIMARY_URL is set")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Seeding failed: %s", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
