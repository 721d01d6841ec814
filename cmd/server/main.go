package main

import (
	"log"

	_ "boardengine/docs"
	"boardengine/internal/config"
	"boardengine/internal/server"
)

// @title           Board Engine API
// @version         1.0
// @description     Schema-configurable boards for field inspection work.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("server initialization failed: %v", err)
	}

	s.Run()
}
