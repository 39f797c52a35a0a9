// Package handler implements the job board HTTP endpoints.
//
// Handlers are plain methods on Handler. Route registration, and the
// decision which routes sit behind the session gate, belong to the parent
// httpserver package; a gated handler finds the verified credential with
// CredentialFromContext.
package handler
