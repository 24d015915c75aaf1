// Package config loads runtime configuration for the store admin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or -config.
//  3. STOREADMIN_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string          base URL of the backend
//	-i int             online status check interval (seconds)
//	-db string         sqlite file for the persisted session
//	-debounce duration search quiet period
//	-log-level string  debug, info, warn or error
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "online_check_interval": "3s",
//	  "search_debounce": "1s"
//	}
package config
