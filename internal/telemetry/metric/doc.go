// Package metric provides the Prometheus metrics of the job board.
//
// Everything is registered on a dedicated registry (not the global default)
// and exposed by Handler at /metrics:
//
//   - jobboard_http_requests_total{method,route,status}
//   - jobboard_http_request_duration_seconds{method,route}
//   - jobboard_applications_submitted_total
//   - jobboard_application_compensations_total{reason}
//   - jobboard_sessions_issued_total
//   - jobboard_session_rejections_total
//   - jobboard_build_info{version,commit,go_version}
//
// plus the standard Go runtime and process collectors.
package metric
