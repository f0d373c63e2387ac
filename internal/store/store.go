// Package store is the relational identity store: users, services, groups,
// their pairwise memberships, and the login bookkeeping mutated by bind
// decisions.
package store

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/password"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/util"

	"github.com/google/uuid"
)

type Store struct {
	db *gorm.DB
}

func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true, // surface duplicate-key errors as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Group{},
		&models.UserServiceMembership{},
		&models.UserGroupMembership{},
		&models.GroupServiceMembership{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db}

	if err := store.seedData(); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	return store, nil
}

// seedData creates the initial admin user on an empty database so a fresh
// deployment has a working administrative login.
func (s *Store) seedData() error {
	var userCount int64
	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	plaintext, err := util.RandomPassword(16)
	if err != nil {
		return err
	}
	hash, err := password.Hash(plaintext)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     "admin",
		FullName:     "Administrator",
		Email:        "admin@localhost",
		UUID:         uuid.New().String(),
		PasswordHash: hash,
		Active:       true,
		Superuser:    true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}
	log.Printf("Created default user: admin / %s (superuser)", plaintext)
	return nil
}

// Ping verifies database connectivity, for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound maps gorm's not-found error to the package sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
