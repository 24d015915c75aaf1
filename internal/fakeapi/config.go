package fakeapi

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/storeadmin/internal/flagx"
	"github.com/dmitrijs2005/storeadmin/internal/timex"
)

// Config holds runtime settings for the development backend.
//
// Fields:
//   - Addr: listen address.
//   - PublicURL: base of generated image URLs ("" derives it from the request).
//   - SecretKey: HMAC secret for HS256 tokens ("" means a random one per run).
//   - TokenTTL: access token lifetime.
//   - DatabaseDSN: Postgres connection string ("" keeps data in memory).
//   - BcryptCost: password hashing cost (0 means bcrypt.DefaultCost).
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Addr        string        `env:"ADDR"`
	PublicURL   string        `env:"PUBLIC_URL"`
	SecretKey   string        `env:"SECRET_KEY"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"`
	DatabaseDSN string        `env:"DATABASE_DSN"`
	BcryptCost  int           `env:"BCRYPT_COST"`
	LogLevel    string        `env:"LOG_LEVEL"`
}

type jsonConfig struct {
	Addr        string         `json:"addr"`
	PublicURL   string         `json:"public_url"`
	SecretKey   string         `json:"secret_key"`
	TokenTTL    timex.Duration `json:"token_ttl"`
	DatabaseDSN string         `json:"database_dsn"`
	LogLevel    string         `json:"log_level"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.TokenTTL = 24 * time.Hour
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// FAKEAPI_* environment variables, then flags.
func LoadConfig(args []string, environ []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigPath(args); path != "" {
		if err := cfg.loadJSON(path); err != nil {
			return nil, err
		}
	}

	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "FAKEAPI_", Environment: m}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if jc.Addr != "" {
		c.Addr = jc.Addr
	}
	if jc.PublicURL != "" {
		c.PublicURL = jc.PublicURL
	}
	if jc.SecretKey != "" {
		c.SecretKey = jc.SecretKey
	}
	if jc.TokenTTL.Duration != 0 {
		c.TokenTTL = jc.TokenTTL.Duration
	}
	if jc.DatabaseDSN != "" {
		c.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.LogLevel != "" {
		c.LogLevel = jc.LogLevel
	}
	return nil
}

// parseFlags reads:
//
//	-a string   listen address
//	-u string   public base URL for image links
//	-s string   JWT secret
//	-t int      token validity, minutes
//	-d string   Postgres DSN
//	-log-level  debug, info, warn or error
func (c *Config) parseFlags(args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-u", "-s", "-t", "-d", "-log-level"})

	fs := flag.NewFlagSet("fakeapi", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.Addr, "a", c.Addr, "listen address")
	fs.StringVar(&c.PublicURL, "u", c.PublicURL, "public base URL")
	fs.StringVar(&c.SecretKey, "s", c.SecretKey, "secret key")
	ttl := fs.Int("t", int(c.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "postgres DSN")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			c.TokenTTL = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
