package queue

const (
	TypeResumeIndex   = "resume:index"
	TypeResumeReindex = "resume:reindex"
)

type ResumeIndexPayload struct {
	CandidateID string `json:"candidate_id"`
	DocumentRef string `json:"document_ref"`
}

type ResumeReindexPayload struct {
	Scope string `json:"scope"` // "all" or "eligible"
}
