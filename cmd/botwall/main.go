package main

import (
	"os"

	"github.com/botwall-io/botwall/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
