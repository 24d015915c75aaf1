package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/flagx"
	"github.com/dmitrijs2005/storeadmin/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Durations use
// timex.Duration so they can be written as "3s" or as integer nanoseconds.
type FileConfig struct {
	ServerURL           string         `json:"server_url" yaml:"server_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	DBPath              string         `json:"db_path" yaml:"db_path"`
	SearchDebounce      timex.Duration `json:"search_debounce" yaml:"search_debounce"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON. Keys missing from
// the file keep their current value. Panics on read or decode errors.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(fc.OnlineCheckInterval.Duration)
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.SearchDebounce.Duration != 0 {
		cfg.SearchDebounce = time.Duration(fc.SearchDebounce.Duration)
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(fc.RequestTimeout.Duration)
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
