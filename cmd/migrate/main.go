package main

import (
	"book_review/internal/config" // Custom import path (Config)
	"book_review/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Run schema migration against the configured database
}
