// Package main provides the entry point for the declarr CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env in the working directory can supply ${VAR} values referenced
	// in the configuration file.
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
