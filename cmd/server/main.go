package main

import (
	"log"

	"skillswap-backend/internal/config"
	"skillswap-backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	srv := server.New(cfg)
	if err := srv.Initialize(); err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	log.Fatal(srv.Start())
}
