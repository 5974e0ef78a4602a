package models

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type EnvConfig struct {
	DatabaseURL    string
	Port           string
	SessionMaxAge  int
	Debug          bool
}

func ReadEnvConfig() EnvConfig {
	// A local .env is optional; real deployments set the variables directly.
	godotenv.Load()

	debug := os.Getenv("HALALAN_DEBUG") == "true"
	port := os.Getenv("HALALAN_PORT")
	if port == "" {
		port = "23496"
	}
	sessionMaxAge, err := strconv.Atoi(os.Getenv("HALALAN_SESSION_MAX_AGE"))
	if err != nil {
		fmt.Println("Using default value for HALALAN_SESSION_MAX_AGE")
		sessionMaxAge = 60 * 60 * 12
	}
	return EnvConfig{
		DatabaseURL:   os.Getenv("HALALAN_DATABASE_URL"),
		Port:          port,
		SessionMaxAge: sessionMaxAge,
		Debug:         debug,
	}
}
