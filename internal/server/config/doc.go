// Package config defines the configuration of jobboard-server.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation run before anything is opened
//   - sanitize.go: masking of secrets for logging
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// a .env file and JOBBOARD_* environment variables.
package config
