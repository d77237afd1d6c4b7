package domain

import "time"

// Submission is one accepted set of answers. ID is assigned per form and
// increases by one with every accepted submission.
type Submission struct {
	ID          int64             `json:"id"`
	FormID      int64             `json:"form_id"`
	FormVersion int32             `json:"form_version"`
	Values      map[string]string `json:"values"`
	SubmittedAt time.Time         `json:"submitted_at"`
}
