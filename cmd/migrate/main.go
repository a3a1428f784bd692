package main

import (
	"flag"
	"log"
	"os"

	"ai-webchat-be/internal/config"
	"ai-webchat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	drop := flag.Bool("drop", false, "drop all tables instead of migrating")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect
	db, err := database.NewGormDB(cfg.Database)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if *drop {
		color.Yellow("Dropping all tables...")
		if err := database.DropSchema(db); err != nil {
			color.Red("Error: Drop failed: %v", err)
			os.Exit(1)
		}
		color.Green("✅ Schema dropped.")
		return
	}

	// 3. Migrate the five chat tables
	color.Cyan("Running schema migration...")
	if err := database.InitSchema(db); err != nil {
		color.Red("Error: Migration failed: %v", err)
		os.Exit(1)
	}
	color.Green("✅ Migration complete: users, chat_names, user_chat_names, conversations, chat_names_conversations")
}
