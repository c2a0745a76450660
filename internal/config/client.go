package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// ClientConfig configures the command-line client. Flags override it.
type ClientConfig struct {
	APIURL    string        `env:"SWAPSPACE_API_URL" envDefault:"http://localhost:3001"`
	StatePath string        `env:"SWAPSPACE_STATE"`
	Timeout   time.Duration `env:"SWAPSPACE_TIMEOUT" envDefault:"0s"`
	LogLevel  string        `env:"SWAPSPACE_LOG_LEVEL" envDefault:"warn"`
}

// LoadClient parses the client environment. StatePath defaults to
// swapspace/state.db under the user config directory.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StatePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.StatePath = filepath.Join(dir, "swapspace", "state.db")
	}
	return &cfg, nil
}
