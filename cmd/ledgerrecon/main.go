package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/exim-ops/ledgerrecon/internal/commands"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
