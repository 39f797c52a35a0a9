package handler

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// SuccessResponse is returned by the session endpoints.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// IssueSessionRequest is the body of POST /jwt.
type IssueSessionRequest struct {
	Email string `json:"email"`
}

// InsertResult reports a created document.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateStatusRequest is the body of PATCH /job-applications/{id}.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateResult reports a status update.
type UpdateResult struct {
	Acknowledged  bool `json:"acknowledged"`
	MatchedCount  int  `json:"matchedCount"`
	ModifiedCount int  `json:"modifiedCount"`
}

// HealthResponse is the body of the health and readiness endpoints.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Error  string `json:"error,omitempty"`
}
