package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Muhsiinn/Jonas-AI/cmd"
)

func main() {
	// Local development keeps API keys in .env; absence is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env failed", "error", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := cmd.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
