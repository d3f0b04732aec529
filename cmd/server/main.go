package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/verdanthq/verdant/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := server.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
