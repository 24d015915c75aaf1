package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the store admin CLI.
//
// Fields:
//   - ServerURL: base URL of the REST backend.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DBPath: sqlite file holding the persisted session ("" means
//     data/storeadmin.db under the working directory).
//   - SearchDebounce: quiet period before a search term is applied.
//   - RequestTimeout: per-request HTTP timeout.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL           string        `env:"SERVER_URL"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	DBPath              string        `env:"DB_PATH"`
	SearchDebounce      time.Duration `env:"SEARCH_DEBOUNCE"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel            string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.DBPath = ""
	c.SearchDebounce = 1000 * time.Millisecond
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given), the environment and command-line flags. Later
// sources take precedence over earlier ones. It panics on unreadable input.
func LoadConfig() *Config {
	return load(os.Args[1:], envMap(os.Environ()))
}

func load(args []string, environ map[string]string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseEnv(cfg, environ)
	parseFlags(cfg, args)
	return cfg
}
