package main

import (
	"os"

	"github.com/compliancelens/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
