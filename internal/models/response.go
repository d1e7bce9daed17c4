package models

// Question is one generated interview question.
type Question struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

// QuestionsResponse wraps a generated question set.
type QuestionsResponse struct {
	Questions []Question `json:"questions"`
}

// standard error payload
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// implements the error interface so request Validate() can return it directly
func (e *ErrorResponse) Error() string {
	return e.Message
}

// Evaluation is the parsed LLM verdict for a voice interview transcript.
type Evaluation struct {
	Score          int      `json:"score"`
	Feedback       string   `json:"feedback"`
	Strengths      []string `json:"strengths,omitempty"`
	Improvements   []string `json:"improvements,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}
