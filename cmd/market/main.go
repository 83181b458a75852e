package main

import (
	"os"

	"github.com/wonny/stockmarket/cmd/market/commands"
)

// main is the entry point for the market CLI
// ⭐ single entry point: go run ./cmd/market [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
