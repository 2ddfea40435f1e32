package services

import (
	"errors"
	"math"

	"gorm.io/gorm"

	"teamup-api/apperrors"
	"teamup-api/models"
)

// UserService computes profile statistics and the attendance-derived
// reliability score.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ReliabilityScore returns round(attended/(attended+noshow)*100) over the
// user's recorded participations. Users with no recorded history score
// 100 so newcomers are not penalized.
func (s *UserService) ReliabilityScore(userID string) (int, error) {
	var attended, noShow int64

	err := s.db.Model(&models.EventParticipant{}).
		Where("user_id = ? AND attended = ?", userID, true).
		Count(&attended).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "Failed to count attendance", err)
	}

	err = s.db.Model(&models.EventParticipant{}).
		Where("user_id = ? AND attended = ?", userID, false).
		Count(&noShow).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "Failed to count no-shows", err)
	}

	total := attended + noShow
	if total == 0 {
		return 100, nil
	}
	return int(math.Round(float64(attended) / float64(total) * 100)), nil
}

// Statistics returns the attendance summary shown on the profile page.
func (s *UserService) Statistics(userID string) (*models.UserStatistics, error) {
	var total, attended, noShow int64

	err := s.db.Model(&models.EventParticipant{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to count signups", err)
	}

	err = s.db.Model(&models.EventParticipant{}).
		Where("user_id = ? AND attended = ?", userID, true).
		Count(&attended).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to count attendance", err)
	}

	err = s.db.Model(&models.EventParticipant{}).
		Where("user_id = ? AND attended = ?", userID, false).
		Count(&noShow).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to count no-shows", err)
	}

	reliability := 100
	if attended+noShow > 0 {
		reliability = int(math.Round(float64(attended) / float64(attended+noShow) * 100))
	}

	return &models.UserStatistics{
		TotalSignups:          total,
		Attended:              attended,
		NoShow:                noShow,
		ReliabilityPercentage: reliability,
	}, nil
}

// PublicProfile returns the trimmed user view with reliability.
func (s *UserService) PublicProfile(userID string) (*models.PublicProfile, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "User not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to load user", err)
	}

	reliability, err := s.ReliabilityScore(userID)
	if err != nil {
		return nil, err
	}

	return &models.PublicProfile{
		ID:          user.ID,
		FullName:    user.FullName,
		Nickname:    user.Nickname,
		AvatarURL:   user.AvatarURL,
		Reliability: reliability,
	}, nil
}

// IsAdmin reports whether the user holds the admin role.
func (s *UserService) IsAdmin(userID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, models.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.KindInternal, "Failed to check role", err)
	}
	return count > 0, nil
}
