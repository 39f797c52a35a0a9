// Package service holds the job board's business logic.
//
//   - TokenService: issues and verifies session credentials
//   - JobService: the job catalogue
//   - ApplicationService: the application ledger, the authorization check
//     for listing a principal's applications, and status updates
//
// Services depend on DocumentStore, implemented by internal/storage. Every
// store call is bounded by a per-call timeout; idempotent reads are retried
// once when that timeout fires, writes never are.
package service
