package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"siams/internal/server"
	"siams/internal/server/config"
)

func main() {

	// optional .env for local development; secrets come from the environment
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
