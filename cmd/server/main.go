package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/bionetlab/interactome/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	srv, err := server.NewServer()
	if err != nil {
		log.Fatalf("Failed to configure server: %v", err)
	}
	r := srv.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = srv.Port()
	}

	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
