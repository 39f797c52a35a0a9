package domain

// Job is a typed view over a job posting document.
//
// Besides the fields the core depends on, a job carries an arbitrary payload
// that is stored and returned verbatim.
type Job struct {
	Document
}

// NewJob wraps a stored document.
func NewJob(doc Document) *Job {
	return &Job{Document: doc}
}

// PrepareJob returns the document to insert for a new posting.
//
// A caller-supplied id is dropped so the store assigns one, and the derived
// applicationCount starts at zero whatever the payload says.
func PrepareJob(payload Document) Document {
	doc := payload.Clone()
	if doc == nil {
		doc = Document{}
	}
	delete(doc, FieldID)
	doc[FieldApplicationCount] = int64(0)
	return doc
}

// ApplicationCount returns the cached number of applications.
// An absent or non-integral counter reads as zero.
func (j *Job) ApplicationCount() int64 {
	n, ok := j.Int(FieldApplicationCount)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// PosterEmail returns the email of the principal that posted the job.
func (j *Job) PosterEmail() string {
	return j.String(FieldHREmail)
}

// enrichmentFields are copied from a job onto its applications when listed.
var enrichmentFields = []string{
	FieldTitle,
	FieldCompany,
	FieldLocation,
	FieldCompanyLogo,
}
