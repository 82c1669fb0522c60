package main

import (
	"miyabi/config"
	"miyabi/helper"
	"miyabi/shared/logger"
	"os"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down) is required")
	}

	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	switch os.Args[1] {
	case "up":
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "down":
		if err := helper.Down(cfg); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "drop":
		if err := helper.Drop(cfg); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "step-up":
		if err := helper.StepUp(cfg); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "version":
		version, dirty, err := helper.Version(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}

		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")
	default:
		log.Fatal().Str("direction", os.Args[1]).Msg("Invalid direction. Use 'up', 'down', 'drop', 'step-up' or 'version'")
	}
}
