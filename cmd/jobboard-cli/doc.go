// Command jobboard-cli is a command-line client for the job board API.
//
// It logs in, browses and posts jobs, submits and reviews applications,
// and can sign or verify session tokens offline given the server secret.
// Server URL, output format and the saved session live in
// ~/.jobboard/cli.yaml.
//
// Usage:
//
//	jobboard-cli login --email me@example.com
//	jobboard-cli job list -o json
//	jobboard-cli application status 01J... Hired
package main
