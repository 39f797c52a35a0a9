// Package config stores jobboard-cli settings in ~/.jobboard/cli.yaml.
//
// The file remembers the server, the preferred output format and the
// session token saved by "jobboard-cli login". Flags and JOBBOARD_*
// environment variables override it per invocation.
package config
