package models

// PersonalizedQuestionsRequest asks for a question set tailored to a
// specific job description and resume.
type PersonalizedQuestionsRequest struct {
	JobDescription string `json:"jobDescription"`
	Resume         string `json:"resume"`
	Role           string `json:"role"`
}

// implements the Validator interface
func (r *PersonalizedQuestionsRequest) Validate() error {
	if r.JobDescription == "" {
		return &ErrorResponse{Code: "missing_job_description", Message: "Job description is required"}
	}
	if r.Resume == "" {
		return &ErrorResponse{Code: "missing_resume", Message: "Resume is required"}
	}
	if r.Role == "" {
		return &ErrorResponse{Code: "missing_role", Message: "Role is required"}
	}
	return nil
}

// GenericQuestionsRequest asks for a question set based on the role alone.
type GenericQuestionsRequest struct {
	Role string `json:"role"`
}

func (r *GenericQuestionsRequest) Validate() error {
	if r.Role == "" {
		return &ErrorResponse{Code: "missing_role", Message: "Role is required"}
	}
	return nil
}

// EvaluateRequest carries a finished interview for LLM scoring plus one insert.
type EvaluateRequest struct {
	Role           string `json:"role"`
	JobDescription string `json:"jobDescription"`
	Resume         string `json:"resume"`
	Transcript     string `json:"transcript"`
	Duration       int    `json:"duration"`
}

func (r *EvaluateRequest) Validate() error {
	if r.Role == "" {
		return &ErrorResponse{Code: "missing_role", Message: "Role is required"}
	}
	if r.Duration < 0 {
		return &ErrorResponse{Code: "invalid_duration", Message: "Duration must not be negative"}
	}
	return nil
}

// SaveSessionRequest persists an interview record directly, without scoring.
type SaveSessionRequest struct {
	Role           string  `json:"role"`
	JobDescription string  `json:"jobDescription"`
	Resume         string  `json:"resume"`
	Transcript     string  `json:"transcript"`
	Duration       int     `json:"duration"`
	Status         string  `json:"status"`
	Feedback       *string `json:"feedback,omitempty"`
	Score          *int    `json:"score,omitempty"`
}

func (r *SaveSessionRequest) Validate() error {
	if r.Role == "" {
		return &ErrorResponse{Code: "missing_role", Message: "Role is required"}
	}
	if r.Status == "" {
		r.Status = StatusCompleted
	}
	if r.Status != StatusCompleted && r.Status != StatusIncomplete {
		return &ErrorResponse{Code: "invalid_status", Message: "Status must be one of: completed, incomplete"}
	}
	if r.Duration < 0 {
		return &ErrorResponse{Code: "invalid_duration", Message: "Duration must not be negative"}
	}
	return nil
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return &ErrorResponse{Code: "missing_username", Message: "Username is required"}
	}
	if r.Email == "" {
		return &ErrorResponse{Code: "missing_email", Message: "Email is required"}
	}
	if len(r.Password) < 8 {
		return &ErrorResponse{Code: "weak_password", Message: "Password must be at least 8 characters"}
	}
	return nil
}

// LoginRequest signs in an existing account.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Username == "" {
		return &ErrorResponse{Code: "missing_username", Message: "Username is required"}
	}
	if r.Password == "" {
		return &ErrorResponse{Code: "missing_password", Message: "Password is required"}
	}
	return nil
}

// StartInterviewRequest opens a live interview attempt.
type StartInterviewRequest struct {
	Role           string `json:"role"`
	JobDescription string `json:"jobDescription"`
	Resume         string `json:"resume"`
}

func (r *StartInterviewRequest) Validate() error {
	if r.Role == "" {
		return &ErrorResponse{Code: "missing_role", Message: "Role is required"}
	}
	if r.JobDescription == "" {
		return &ErrorResponse{Code: "missing_job_description", Message: "Job description is required"}
	}
	if r.Resume == "" {
		return &ErrorResponse{Code: "missing_resume", Message: "Resume is required"}
	}
	return nil
}
