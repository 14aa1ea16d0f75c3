package api

import (
	"github.com/JeWeidn/tkc-Chatbot/pkg/evaluation"
	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// TurnResponse is the shared shape of /api/interview/start,
// /api/interview/reset and /api/retrieve: a single assistant
// utterance, an empty sources list (the retrieval UI is out of scope, §1),
// and the session id for client convenience.
type TurnResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"sessionId"`
}

// EvaluationStartResponse is the body of POST /api/evaluation/start.
type EvaluationStartResponse struct {
	Answer            string                  `json:"answer"`
	EvalSchema        evaluation.Schema       `json:"eval_schema"`
	Summary           string                  `json:"summary"`
	KnowledgeMarkdown string                  `json:"knowledge_markdown"`
	NewKnowledge      []knowledge.CourseFacts `json:"new_knowledge"`
	SessionID         string                  `json:"sessionId"`
}

// EvaluationSubmitResponse is the body of POST /api/evaluation/submit.
type EvaluationSubmitResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ConversationsResponse is the body of GET /api/conversations.
type ConversationsResponse struct {
	Sessions map[string]*session.State `json:"sessions"`
}

// ErrorResponse is the body of every non-2xx JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
