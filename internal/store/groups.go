package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"

	"github.com/google/uuid"
)

func (s *Store) CreateGroup(group *models.Group) error {
	if group.UUID == "" {
		group.UUID = uuid.New().String()
	}
	if err := s.db.Create(group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) GetGroupByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (s *Store) GetGroupByName(name string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Where("name = ?", name).First(&group).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (s *Store) ListGroups() ([]models.Group, error) {
	var groups []models.Group
	err := s.db.Order("name").Find(&groups).Error
	return groups, err
}

func (s *Store) CountGroups() (int64, error) {
	var count int64
	err := s.db.Model(&models.Group{}).Count(&count).Error
	return count, err
}

func (s *Store) SetGroupUUID(groupID uint, id string) error {
	return s.db.Model(&models.Group{}).Where("id = ?", groupID).
		Update("uuid", id).Error
}

func (s *Store) DeleteGroup(groupID uint) error {
	return s.db.Delete(&models.Group{}, groupID).Error
}
