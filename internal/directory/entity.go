package directory

import (
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"
)

// vendorName is advertised in the root entity.
const vendorName = "Daniel Authenticator"

// rootEntity is the static capability advertisement returned for the empty
// search base.
func (d *Directory) rootEntity() Entity {
	base := d.resolver.BaseDN()
	return Entity{
		DN: "",
		Attributes: map[string][]string{
			"objectClass":          {"top"},
			"vendorName":           {vendorName},
			"namingContexts":       {base},
			"defaultnamingcontext": {base},
		},
	}
}

// userEntity synthesizes a user record as seen from inside a service. The
// memberOf attribute lists only groups that are members of the same
// service, so one service never observes a user's memberships elsewhere.
func (d *Directory) userEntity(service *models.Service, user *models.User) (Entity, error) {
	groups, err := d.store.UserGroupsInService(user.ID, service.ID)
	if err != nil {
		return Entity{}, d.dbErr("synthesize user memberships", err)
	}
	memberOf := make([]string, 0, len(groups))
	for _, group := range groups {
		memberOf = append(memberOf, d.resolver.GroupDN(group.Name, service.Name))
	}
	return Entity{
		DN: d.resolver.UserDN(user.Username, service.Name),
		Attributes: map[string][]string{
			"uid":         {user.Username},
			"cn":          {user.FullName},
			"displayName": {user.FullName},
			"givenName":   {user.FullName},
			"sn":          {""},
			"mail":        {user.Email},
			"ipaUniqueID": {user.UUID},
			"objectClass": {"user"},
			"memberOf":    memberOf,
		},
	}, nil
}

// groupEntity synthesizes a group record as seen from inside a service,
// listing only members that also belong to the service.
func (d *Directory) groupEntity(service *models.Service, group *models.Group) (Entity, error) {
	users, err := d.store.GroupUsersInService(group.ID, service.ID)
	if err != nil {
		return Entity{}, d.dbErr("synthesize group members", err)
	}
	members := make([]string, 0, len(users))
	for _, user := range users {
		members = append(members, d.resolver.UserDN(user.Username, service.Name))
	}
	return Entity{
		DN: d.resolver.GroupDN(group.Name, service.Name),
		Attributes: map[string][]string{
			"uid":         {group.Name},
			"cn":          {group.FullName},
			"displayName": {group.FullName},
			"ipaUniqueID": {group.UUID},
			"objectClass": {"group"},
			"member":      members,
		},
	}, nil
}
