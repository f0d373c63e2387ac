package store

import (
	"gorm.io/gorm/clause"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"
)

// Membership writes are idempotent: adding an existing edge is a no-op.

func (s *Store) AddUserToService(userID, serviceID uint) error {
	m := models.UserServiceMembership{UserID: userID, ServiceID: serviceID}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).Create(&m).Error
}

func (s *Store) RemoveUserFromService(userID, serviceID uint) error {
	return s.db.Where("user_id = ? AND service_id = ?", userID, serviceID).
		Delete(&models.UserServiceMembership{}).Error
}

func (s *Store) AddUserToGroup(userID, groupID uint) error {
	m := models.UserGroupMembership{UserID: userID, GroupID: groupID}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).Create(&m).Error
}

func (s *Store) RemoveUserFromGroup(userID, groupID uint) error {
	return s.db.Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&models.UserGroupMembership{}).Error
}

func (s *Store) AddGroupToService(groupID, serviceID uint) error {
	m := models.GroupServiceMembership{GroupID: groupID, ServiceID: serviceID}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).Create(&m).Error
}

func (s *Store) RemoveGroupFromService(groupID, serviceID uint) error {
	return s.db.Where("group_id = ? AND service_id = ?", groupID, serviceID).
		Delete(&models.GroupServiceMembership{}).Error
}

// IsUserInService reports whether the user is a direct member of the
// service, without materializing the membership list.
func (s *Store) IsUserInService(userID, serviceID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserServiceMembership{}).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		Count(&count).Error
	return count > 0, err
}

// IsGroupInService reports whether the group is a member of the service.
func (s *Store) IsGroupInService(groupID, serviceID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.GroupServiceMembership{}).
		Where("group_id = ? AND service_id = ?", groupID, serviceID).
		Count(&count).Error
	return count > 0, err
}

// UsersInService lists the users that are members of a service, ordered by
// username.
func (s *Store) UsersInService(serviceID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN user_service_memberships usm ON usm.user_id = users.id").
		Where("usm.service_id = ?", serviceID).
		Order("users.username").
		Find(&users).Error
	return users, err
}

// GroupsInService lists the groups that are members of a service, ordered
// by name.
func (s *Store) GroupsInService(serviceID uint) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.
		Joins("JOIN group_service_memberships gsm ON gsm.group_id = groups.id").
		Where("gsm.service_id = ?", serviceID).
		Order("groups.name").
		Find(&groups).Error
	return groups, err
}

// UserServices lists the services a user is a member of.
func (s *Store) UserServices(userID uint) ([]models.Service, error) {
	var services []models.Service
	err := s.db.
		Joins("JOIN user_service_memberships usm ON usm.service_id = services.id").
		Where("usm.user_id = ?", userID).
		Order("services.name").
		Find(&services).Error
	return services, err
}

// UserGroups lists the groups a user is a member of, across all services.
func (s *Store) UserGroups(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.
		Joins("JOIN user_group_memberships ugm ON ugm.group_id = groups.id").
		Where("ugm.user_id = ?", userID).
		Order("groups.name").
		Find(&groups).Error
	return groups, err
}

// GroupServices lists the services a group is a member of.
func (s *Store) GroupServices(groupID uint) ([]models.Service, error) {
	var services []models.Service
	err := s.db.
		Joins("JOIN group_service_memberships gsm ON gsm.service_id = services.id").
		Where("gsm.group_id = ?", groupID).
		Order("services.name").
		Find(&services).Error
	return services, err
}

// UserGroupsInService lists the one-hop intersection: groups the user
// belongs to that are also members of the service. This is what keeps a
// user's memberships in other services invisible.
func (s *Store) UserGroupsInService(userID, serviceID uint) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.
		Joins("JOIN user_group_memberships ugm ON ugm.group_id = groups.id").
		Joins("JOIN group_service_memberships gsm ON gsm.group_id = groups.id").
		Where("ugm.user_id = ? AND gsm.service_id = ?", userID, serviceID).
		Order("groups.name").
		Find(&groups).Error
	return groups, err
}

// GroupUsersInService lists the symmetric intersection: members of the
// group that are also members of the service.
func (s *Store) GroupUsersInService(groupID, serviceID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN user_group_memberships ugm ON ugm.user_id = users.id").
		Joins("JOIN user_service_memberships usm ON usm.user_id = users.id").
		Where("ugm.group_id = ? AND usm.service_id = ?", groupID, serviceID).
		Order("users.username").
		Find(&users).Error
	return users, err
}
