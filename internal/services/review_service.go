package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/herozvz07-ctrl/guilder/internal/models"
)

var (
	ErrAlreadyDecided   = errors.New("application already has a different decision")
	ErrApplicantUnknown = errors.New("applicant not found")
)

// ReviewService carries the human side of the pipeline: applicant records,
// and the terminal accept/reject/ban decisions on applications. The vote
// tally is never consulted here; decisions are the admin's alone.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// EnsureApplicant creates the applicant on first interaction and keeps the
// handle current afterwards. Roles are never touched here.
func (s *ReviewService) EnsureApplicant(userID int64, handle string) (*models.Applicant, error) {
	var applicant models.Applicant
	err := s.db.First(&applicant, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		applicant = models.Applicant{
			ID:       userID,
			Handle:   handle,
			Role:     models.RoleMember,
			JoinedAt: time.Now(),
		}
		if err := s.db.Create(&applicant).Error; err != nil {
			return nil, fmt.Errorf("failed to create applicant: %w", err)
		}
		return &applicant, nil
	}
	if err != nil {
		return nil, err
	}
	if handle != "" && handle != applicant.Handle {
		applicant.Handle = handle
		if err := s.db.Save(&applicant).Error; err != nil {
			return nil, err
		}
	}
	return &applicant, nil
}

func (s *ReviewService) GetApplication(id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.db.First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

// ListApplications returns applications for the admin surface, newest first.
func (s *ReviewService) ListApplications(status string, limit, offset int) ([]models.Application, int64, error) {
	var apps []models.Application
	var total int64

	query := s.db.Model(&models.Application{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Accept marks the application approved.
func (s *ReviewService) Accept(applicationID uuid.UUID, reviewerID int64) (*models.Application, error) {
	return s.decide(applicationID, reviewerID, models.StatusApproved)
}

// Reject marks the application rejected.
func (s *ReviewService) Reject(applicationID uuid.UUID, reviewerID int64) (*models.Application, error) {
	return s.decide(applicationID, reviewerID, models.StatusRejected)
}

// decide applies a terminal status. Re-applying the status the application
// already carries is a no-op success; switching to a different terminal
// status is refused.
func (s *ReviewService) decide(applicationID uuid.UUID, reviewerID int64, status string) (*models.Application, error) {
	app, err := s.GetApplication(applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == status {
		return app, nil
	}
	if app.Status != models.StatusPending {
		return app, ErrAlreadyDecided
	}

	app.Status = status
	app.ReviewerID = &reviewerID
	if err := s.db.Save(app).Error; err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	return app, nil
}

// BanApplicant is the single ban path used by both the application button
// and the reply command: the applicant's role becomes banned, and any
// pending application is closed with the banned status.
func (s *ReviewService) BanApplicant(applicantID int64, reviewerID int64) error {
	result := s.db.Model(&models.Applicant{}).
		Where("id = ?", applicantID).
		Update("role", models.RoleBanned)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicantUnknown
	}

	return s.db.Model(&models.Application{}).
		Where("applicant_id = ? AND status = ?", applicantID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      models.StatusBanned,
			"reviewer_id": reviewerID,
		}).Error
}

// Unban restores a banned applicant to plain membership.
func (s *ReviewService) Unban(applicantID int64) error {
	result := s.db.Model(&models.Applicant{}).
		Where("id = ? AND role = ?", applicantID, models.RoleBanned).
		Update("role", models.RoleMember)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicantUnknown
	}
	return nil
}

// Promote raises an applicant to admin. The access gate has already checked
// that the caller is the owner.
func (s *ReviewService) Promote(applicantID int64) error {
	result := s.db.Model(&models.Applicant{}).
		Where("id = ?", applicantID).
		Update("role", models.RoleAdmin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicantUnknown
	}
	return nil
}
