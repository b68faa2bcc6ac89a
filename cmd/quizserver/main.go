package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/nkralj/quizserver/internal/cli"
)

func main() {
	_ = godotenv.Load()
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
