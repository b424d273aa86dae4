package services

import (
	"strings"

	"time-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ProfileUpdate struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	CurrentProject *string `json:"current_project"`
	CurrentCompany *string `json:"current_company"`
}

type UserService interface {
	GetUserProfile(db *gorm.DB, userID uuid.UUID) (*models.User, error)
	UpdateProfile(db *gorm.DB, userID uuid.UUID, update ProfileUpdate) (*models.User, error)
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) GetUserProfile(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies only the fields the caller supplied. The current
// project/company defaults are stamped onto every task the user creates next.
func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID uuid.UUID, update ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.CurrentProject != nil {
		user.CurrentProject = strings.TrimSpace(*update.CurrentProject)
	}
	if update.CurrentCompany != nil {
		user.CurrentCompany = strings.TrimSpace(*update.CurrentCompany)
	}

	if err := db.Save(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
