// Package main loads move and typing tables into the game data store.
package main

import (
	"context"
	"flag"
	"os"

	seedcmd "github.com/vioshim/proxyengine/internal/cmd/seed"
	"github.com/vioshim/proxyengine/internal/platform/config"
)

func main() {
	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := seedcmd.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
