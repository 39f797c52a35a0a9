// Command jobboard-server serves the job board HTTP API.
//
// Configuration is layered: built-in defaults, then the YAML file given by
// -config, then a .env file (-env-file), then JOBBOARD_* environment
// variables. Changing log.level in the config file takes effect without a
// restart.
//
// Usage:
//
//	jobboard-server -config /etc/jobboard/config.yaml
//	JOBBOARD_SECURITY_JWT_SECRET=... jobboard-server
package main
