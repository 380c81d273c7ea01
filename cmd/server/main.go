package main

import (
	"planner/internal/config"
	"planner/internal/server"

	log "github.com/sirupsen/logrus"
)

// @title           Planner Companion API
// @version         1.0
// @description     Local companion for the planner service.

// @host      localhost:3000
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
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
