package main

import (
	"miyabi/config"
	"miyabi/di"
	"miyabi/shared/logger"
)

// @title Miyabi API
// @version 1.0
// @description Hotel reservations, stays, consumptions and receipts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
