package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          base URL of the backend
//	-i int             online check interval in seconds
//	-db string         sqlite file for the persisted session
//	-debounce duration search quiet period (e.g. 500ms)
//	-log-level string  debug, info, warn or error
//
// Only the flags listed above are picked out of args (flagx.FilterArgs), so
// other components can share the command line.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-db", "-debounce", "-log-level"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the local sqlite database")
	fs.DurationVar(&cfg.SearchDebounce, "debounce", cfg.SearchDebounce, "search debounce period")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
}
