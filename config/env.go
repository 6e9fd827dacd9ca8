package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file from the working directory into the process
// environment before viper reads it. A missing file is not an error, and
// variables already set in the environment are never overridden.
func LoadEnv() error {
	return loadEnvFile()
}

func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
