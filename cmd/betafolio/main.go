package main

import (
	"os"

	"github.com/wonny/betafolio/backend/cmd/betafolio/commands"
)

// main is the entry point for the Betafolio CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/betafolio [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
