package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/password"

	"github.com/google/uuid"
)

// CreateUser persists a new user, assigning a fresh UUID when none is set.
// The password hash must already be in the native format.
func (s *Store) CreateUser(user *models.User) error {
	if user.UUID == "" {
		user.UUID = uuid.New().String()
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("username").Find(&users).Error
	return users, err
}

func (s *Store) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// UpdateLoginState writes a user's login bookkeeping in a single UPDATE,
// so concurrent bind decisions against one account cannot interleave a
// partially written state.
func (s *Store) UpdateLoginState(userID uint, state password.LoginState) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"failed_login_attempts": state.FailedAttempts,
		"locked":                state.Locked,
		"last_login_at":         state.LastLoginAt,
	}).Error
}

// UnlockUser clears the lock and the failure counter, the administrative
// override for a locked-out account.
func (s *Store) UnlockUser(userID uint) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"locked":                false,
		"failed_login_attempts": 0,
	}).Error
}

func (s *Store) SetUserPassword(userID uint, passwordHash string) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (s *Store) SetUserActive(userID uint, active bool) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("active", active).Error
}

func (s *Store) SetUserSuperuser(userID uint, superuser bool) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("superuser", superuser).Error
}

func (s *Store) SetUserUUID(userID uint, id string) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("uuid", id).Error
}

func (s *Store) DeleteUser(userID uint) error {
	return s.db.Delete(&models.User{}, userID).Error
}
