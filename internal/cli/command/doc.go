// Package command defines the jobboard-cli commands using urfave/cli/v2.
//
//   - root.go: the app, global flags and settings resolution
//   - auth.go: login and logout
//   - job.go: job postings
//   - application.go: applications and status updates
//   - token.go: offline token issue/verify for operators
//
// Every command writes its result to App.Writer in the selected output
// format, so tests can capture it.
package command
