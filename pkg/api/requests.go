package api

// InterviewStartRequest is the body of POST /api/interview/start.
type InterviewStartRequest struct {
	SessionID string `json:"sessionId"`
	Mode      string `json:"mode,omitempty"`
	Force     bool   `json:"force,omitempty"`
}

// InterviewResetRequest is the body of POST /api/interview/reset.
type InterviewResetRequest struct {
	SessionID string `json:"sessionId"`
}

// RetrieveRequest is the body of POST /api/retrieve — one user turn.
type RetrieveRequest struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
	Mode      string `json:"mode,omitempty"`
}

// EvaluationStartRequest is the body of POST /api/evaluation/start.
type EvaluationStartRequest struct {
	SessionID string `json:"sessionId"`
}

// EvaluationSubmitRequest is the body of POST /api/evaluation/submit.
type EvaluationSubmitRequest struct {
	SessionID   string             `json:"sessionId"`
	Ratings     map[string]float64 `json:"ratings"`
	Comments    string             `json:"comments,omitempty"`
	Corrections string             `json:"corrections,omitempty"`
}
