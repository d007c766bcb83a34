package domain

// SubmissionEvent is an accepted submission reported by the capture layer.
// Only Slug and Timestamp are required; every other field is optional and
// follows the defaulting rules of the ingestion protocol.
type SubmissionEvent struct {
	Slug          string     `json:"slug"`
	QuestionID    string     `json:"questionId,omitempty"`
	Title         string     `json:"title,omitempty"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	URL           string     `json:"url,omitempty"`
	Origin        Origin     `json:"origin,omitempty"`
	Timestamp     int64      `json:"timestamp"`
	SubmittedCode string     `json:"submittedCode,omitempty"`
	SubmittedLang string     `json:"submittedLang,omitempty"`
}

// IngestOutcome tells which branch of the ingestion protocol ran
type IngestOutcome string

const (
	IngestCreated  IngestOutcome = "created"
	IngestAdvanced IngestOutcome = "advanced"
	IngestCooldown IngestOutcome = "cooldown"
)

// IngestResult is the outcome of one accepted submission
type IngestResult struct {
	Outcome IngestOutcome `json:"outcome"`
	Message string        `json:"message"`
	Problem *Problem      `json:"problem,omitempty"`
}

// AddProblemRequest adds a problem by hand rather than from a submission
type AddProblemRequest struct {
	Title      string     `json:"title"`
	QuestionID string     `json:"questionId"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags"`
	URL        string     `json:"url"`
	Note       string     `json:"note"`
}

// UpdateNoteRequest edits the free-text fields of a problem.
// Nil fields are left untouched.
type UpdateNoteRequest struct {
	Slug string  `json:"slug"`
	Note *string `json:"note"`
	Code *string `json:"code"`
}

// SlugRequest targets a single problem
type SlugRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// QueueSummary is the badge view of the queue
type QueueSummary struct {
	Total    int `json:"total"`
	Due      int `json:"due"`
	Mastered int `json:"mastered"`
}

// Result is the envelope returned across the external interface.
// Callers must check Success; errors never escape as anything else.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
