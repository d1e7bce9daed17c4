package models

import "testing"

func TestPersonalizedQuestionsRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     PersonalizedQuestionsRequest
		wantErr string
	}{
		{"valid", PersonalizedQuestionsRequest{JobDescription: "jd", Resume: "cv", Role: "Backend Engineer"}, ""},
		{"missing jd", PersonalizedQuestionsRequest{Resume: "cv", Role: "Backend Engineer"}, "missing_job_description"},
		{"missing resume", PersonalizedQuestionsRequest{JobDescription: "jd", Role: "Backend Engineer"}, "missing_resume"},
		{"missing role", PersonalizedQuestionsRequest{JobDescription: "jd", Resume: "cv"}, "missing_role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			resp, ok := err.(*ErrorResponse)
			if !ok {
				t.Fatalf("expected *ErrorResponse, got %T", err)
			}
			if resp.Code != tt.wantErr {
				t.Fatalf("expected code %s, got %s", tt.wantErr, resp.Code)
			}
		})
	}
}

func TestSaveSessionRequestValidate(t *testing.T) {
	req := &SaveSessionRequest{Role: "Backend Engineer"}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != StatusCompleted {
		t.Fatalf("expected default status completed, got %s", req.Status)
	}

	bad := &SaveSessionRequest{Role: "Backend Engineer", Status: "paused"}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for invalid status")
	}

	neg := &SaveSessionRequest{Role: "Backend Engineer", Duration: -1}
	if err := neg.Validate(); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestStartInterviewRequestValidate(t *testing.T) {
	req := &StartInterviewRequest{Role: "r", JobDescription: "jd", Resume: "cv"}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&StartInterviewRequest{Role: "r"}).Validate(); err == nil {
		t.Fatal("expected error for missing fields")
	}
}
