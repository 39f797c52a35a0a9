// Package httpserver provides the HTTP server of the job board.
//
// Every request passes the same chain:
//
//	RequestID -> Recover -> CORS -> RateLimit -> Audit -> route
//
// Each route is registered with an explicit Gate. GateSession routes run
// behind SessionGate, which verifies the "token" cookie and rejects any
// failure with one uniform 401 response.
package httpserver
