// Package connection is the HTTP client jobboard-cli uses to talk to
// jobboard-server. The session token is sent as the "token" cookie, the
// same way a browser would send it.
package connection
