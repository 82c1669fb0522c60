package main

import (
	"miyabi/config"
	"miyabi/di"
	"miyabi/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	worker := di.InitializeWorker()
	worker.Run()
}
