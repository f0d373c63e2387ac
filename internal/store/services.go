package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"
)

func (s *Store) CreateService(service *models.Service) error {
	if err := s.db.Create(service).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) GetServiceByID(id uint) (*models.Service, error) {
	var service models.Service
	if err := s.db.First(&service, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &service, nil
}

func (s *Store) GetServiceByName(name string) (*models.Service, error) {
	var service models.Service
	if err := s.db.Where("name = ?", name).First(&service).Error; err != nil {
		return nil, notFound(err)
	}
	return &service, nil
}

func (s *Store) ListServices() ([]models.Service, error) {
	var services []models.Service
	err := s.db.Order("name").Find(&services).Error
	return services, err
}

func (s *Store) CountServices() (int64, error) {
	var count int64
	err := s.db.Model(&models.Service{}).Count(&count).Error
	return count, err
}

func (s *Store) SetServicePassword(serviceID uint, passwordHash string) error {
	return s.db.Model(&models.Service{}).Where("id = ?", serviceID).
		Update("password_hash", passwordHash).Error
}

func (s *Store) SetServiceActive(serviceID uint, active bool) error {
	return s.db.Model(&models.Service{}).Where("id = ?", serviceID).
		Update("active", active).Error
}

func (s *Store) SetServiceHyperlink(serviceID uint, hyperlink string) error {
	return s.db.Model(&models.Service{}).Where("id = ?", serviceID).
		Update("hyperlink", hyperlink).Error
}

func (s *Store) DeleteService(serviceID uint) error {
	return s.db.Delete(&models.Service{}, serviceID).Error
}
