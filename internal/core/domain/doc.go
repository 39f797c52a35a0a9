// Package domain defines the core domain models for the job board.
//
// Domain models are pure values without IO dependencies. This package contains:
//
//   - Document: the schemaless record unit exchanged with document stores
//   - Job: a posting, carrying the derived applicationCount field
//   - Application: a submission referencing exactly one job
//   - Credential: the verified claims of a session token
//   - Errors: domain error codes shared by services and transport
package domain
