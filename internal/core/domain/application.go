package domain

import "strings"

// Application is a typed view over a job application document.
type Application struct {
	Document
}

// NewApplication builds the document to insert for a submission.
//
// Only the fields the ledger relies on are checked: the job reference and
// the submitting principal. Everything else in the payload is kept as is.
func NewApplication(payload Document) (*Application, error) {
	doc := payload.Clone()
	if doc == nil {
		return nil, ErrApplicationValidation.WithDetails("empty payload")
	}
	delete(doc, FieldID)

	if strings.TrimSpace(doc.String(FieldJobID)) == "" {
		return nil, ErrApplicationValidation.WithDetails(FieldJobID + " is required")
	}
	if strings.TrimSpace(doc.String(FieldApplicationEmail)) == "" {
		return nil, ErrApplicationValidation.WithDetails(FieldApplicationEmail + " is required")
	}

	return &Application{Document: doc}, nil
}

// WrapApplication wraps a stored document.
func WrapApplication(doc Document) *Application {
	return &Application{Document: doc}
}

// JobID returns the id of the referenced job.
func (a *Application) JobID() string {
	return a.String(FieldJobID)
}

// ApplicantEmail returns the submitting principal.
func (a *Application) ApplicantEmail() string {
	return a.String(FieldApplicationEmail)
}

// Status returns the current status, or "" if none was ever set.
func (a *Application) Status() string {
	return a.String(FieldStatus)
}

// Enrich copies the display fields of job onto the application.
// Fields the job does not carry are left untouched.
func (a *Application) Enrich(job *Job) {
	if job == nil {
		return
	}
	for _, field := range enrichmentFields {
		if v, ok := job.Document[field]; ok {
			a.Document[field] = v
		}
	}
}

// OwnedBy reports whether identity may act on the application: either the
// applicant or the poster of the referenced job.
func (a *Application) OwnedBy(identity string, job *Job) bool {
	if identity == "" {
		return false
	}
	if a.ApplicantEmail() == identity {
		return true
	}
	return job != nil && job.PosterEmail() == identity
}

// ValidateStatus checks a status update value.
func ValidateStatus(status string) error {
	if strings.TrimSpace(status) == "" {
		return ErrMissingArgument.WithDetails("status is required")
	}
	return nil
}
