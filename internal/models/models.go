package models

import (
	"time"
)

// User is an authenticatable account. Users belong to zero or more
// services and zero or more groups, each independently.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	FullName     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	UUID         string `gorm:"uniqueIndex;not null"` // stable external identifier, assigned at creation
	PasswordHash string `gorm:"not null"`
	Active       bool   `gorm:"not null;default:true"`

	// Login bookkeeping, mutated only through Store.UpdateLoginState
	// and Store.UnlockUser.
	FailedLoginAttempts int  `gorm:"not null;default:0"`
	Locked              bool `gorm:"not null;default:false"`
	LastLoginAt         *time.Time

	Superuser bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service is a self-contained naming subtree ("ou=<name>,ou=services,...").
// A user can authenticate through a service only if it is a direct member.
type Service struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;not null"`
	FullName     string `gorm:"not null"`
	Hyperlink    string
	PasswordHash string `gorm:"not null"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Group is a named collection of users, itself scoped into services.
type Group struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	FullName  string `gorm:"not null"`
	UUID      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserServiceMembership links a user to a service it may bind through.
type UserServiceMembership struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"uniqueIndex:idx_user_service;not null"`
	ServiceID uint    `gorm:"uniqueIndex:idx_user_service;not null"`
	User      User    `gorm:"constraint:OnDelete:CASCADE"`
	Service   Service `gorm:"constraint:OnDelete:CASCADE"`
}

// UserGroupMembership links a user to a group, independently of services.
type UserGroupMembership struct {
	ID      uint  `gorm:"primaryKey"`
	UserID  uint  `gorm:"uniqueIndex:idx_user_group;not null"`
	GroupID uint  `gorm:"uniqueIndex:idx_user_group;not null"`
	User    User  `gorm:"constraint:OnDelete:CASCADE"`
	Group   Group `gorm:"constraint:OnDelete:CASCADE"`
}

// GroupServiceMembership makes a group visible inside a service. A user's
// effective groups inside a service are the one-hop intersection of its
// group memberships with the service's group memberships.
type GroupServiceMembership struct {
	ID        uint    `gorm:"primaryKey"`
	GroupID   uint    `gorm:"uniqueIndex:idx_group_service;not null"`
	ServiceID uint    `gorm:"uniqueIndex:idx_group_service;not null"`
	Group     Group   `gorm:"constraint:OnDelete:CASCADE"`
	Service   Service `gorm:"constraint:OnDelete:CASCADE"`
}
