package main

import (
	"os"

	"github.com/arnavshah/duty-rotation-go/internal/cli"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	if err := cli.NewRootCmd(Version).Execute(); err != nil {
		os.Exit(1)
	}
}
