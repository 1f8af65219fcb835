// Package config handles configuration loading for bookdesk.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. Fields missing from the file keep their built-in defaults, and the
// result is validated before use.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BOOKDESK_CONFIG environment variable
//  2. ./bookdesk.yaml (current directory)
//  3. $XDG_CONFIG_HOME/bookdesk/config.yaml (~/.config/bookdesk/config.yaml)
//
// When none exists the built-in defaults are used. A path ending in .toml is parsed
// as TOML; anything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	credentials:
//	  encryption_key: "${BOOKDESK_CREDENTIALS_KEY}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	api:
//	  timeout: "30s"
//
// # Configuration Sections
//
// API:
//
//	api:
//	  base_url: "https://api.example.com/api/v1"
//	  timeout: "30s"
//
// Credential storage (memory, file or sqlite; path defaults per backend):
//
//	credentials:
//	  backend: "sqlite"
//	  path: "~/.config/bookdesk/credentials.db"
//	  namespace: "bookdesk"
//	  encryption_key: "${BOOKDESK_CREDENTIALS_KEY}"
//
// Guard routes (CLI command names):
//
//	routes:
//	  login: "login"
//	  home: "status"
//
// Tailnet access for APIs only reachable over Tailscale:
//
//	tailscale:
//	  enabled: true
//	  hostname: "bookdesk-cli"
//	  auth_key: "${TS_AUTHKEY}"
//	  ephemeral: true
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
