package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"voxa/internal/models"
)

var ErrSessionNotFound = errors.New("interview session not found")

// historyLimit caps how many sessions the history view returns.
const historyLimit = 10

type SessionRepository struct {
	DB *gorm.DB
}

// Create inserts a new interview session record. Records are written once
// per attempt and never updated.
func (r *SessionRepository) Create(session *models.InterviewSession) error {
	return r.DB.Create(session).Error
}

// ListByUser retrieves the most recent sessions owned by the given user,
// newest first.
func (r *SessionRepository) ListByUser(userID uint) ([]models.InterviewSession, error) {
	sessions := []models.InterviewSession{}
	err := r.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(historyLimit).
		Find(&sessions).Error
	return sessions, err
}

// GetByID retrieves one session record.
func (r *SessionRepository) GetByID(id uint) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.DB.First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteAnonymousOlderThan removes ownerless sessions created before the
// cutoff. Returns the number of rows deleted.
func (r *SessionRepository) DeleteAnonymousOlderThan(cutoff time.Time) (int64, error) {
	result := r.DB.
		Where("user_id IS NULL AND created_at < ?", cutoff).
		Delete(&models.InterviewSession{})
	return result.RowsAffected, result.Error
}
