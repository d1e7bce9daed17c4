package models

import (
	"gorm.io/gorm"
)

// Session status values. A record is written exactly once per interview
// attempt and never updated afterwards.
const (
	StatusCompleted  = "completed"
	StatusIncomplete = "incomplete"
)

// Placeholder texts used when an attempt terminates without usable data.
const (
	PlaceholderTranscript         = "Interview session ended unexpectedly"
	PlaceholderIncompleteFeedback = "Interview session ended unexpectedly. Please try again for a complete session."
	PlaceholderEvaluationFailed   = "Interview completed but evaluation failed"
)

// User represents a registered user in the system.
type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// InterviewSession represents one persisted interview attempt.
// UserID is nullable: anonymous attempts are stored without an owner.
type InterviewSession struct {
	gorm.Model
	UserID     *uint   `gorm:"index" json:"userId,omitempty"`
	Role       string  `gorm:"not null" json:"role"`
	Transcript *string `gorm:"type:text" json:"transcript"`
	Feedback   *string `gorm:"type:text" json:"feedback"`
	Score      *int    `json:"score"`
	Duration   *int    `json:"duration"`
	Status     string  `gorm:"not null;default:completed" json:"status"`
}
