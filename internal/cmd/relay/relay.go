// Package relay parses relay command flags and composes the transport
// entrypoint.
package relay

import (
	"context"
	"flag"

	entrypoint "github.com/vioshim/proxyengine/internal/platform/cmd"
	server "github.com/vioshim/proxyengine/internal/relay"
)

// Config holds relay command configuration.
type Config struct {
	HTTPAddr     string `env:"PROXYENGINE_RELAY_HTTP_ADDR" envDefault:":8086"`
	StorePath    string `env:"PROXYENGINE_STORE_PATH"      envDefault:"proxyengine.db"`
	GameDataPath string `env:"PROXYENGINE_GAME_DATA_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "relay HTTP listen address")
	fs.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "persona and preference store path")
	fs.StringVar(&cfg.GameDataPath, "game-data-path", cfg.GameDataPath, "game data sqlite path (empty disables game lookups)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the relay server and serves until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRelay, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			HTTPAddr:     cfg.HTTPAddr,
			StorePath:    cfg.StorePath,
			GameDataPath: cfg.GameDataPath,
		})
	})
}
