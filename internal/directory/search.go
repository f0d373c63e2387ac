package directory

import (
	"errors"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/naming"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/store"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/strand"
)

// Search decides whether the identity bound as boundDN may read baseDN,
// and synthesizes the matching entities when it may. The empty base is the
// root entity and is open to everyone, even unbound connections.
func (d *Directory) Search(boundDN, baseDN string, trail strand.Strand) (bool, []Entity, strand.Strand, error) {
	trail = trail.Open("search", baseDN)

	allowed, entities, phrase, kind, err := d.search(boundDN, baseDN)
	if err != nil {
		return false, nil, trail, err
	}

	d.metrics.RecordSearch(kind, allowed)
	return allowed, entities, trail.Note(phrase).Close(), nil
}

func (d *Directory) search(boundDN, baseDN string) (bool, []Entity, string, string, error) {
	if baseDN == "" {
		return true, []Entity{d.rootEntity()}, "null base allowed", "root", nil
	}

	// The base sits somewhere below the root: only service-bound and
	// user-bound identities may continue, and only after the identity
	// they bound as turns out to still exist.
	bound := d.resolver.Resolve(boundDN)
	switch bound.Kind {
	case naming.KindService:
		_, err := d.store.GetServiceByName(bound.Service)
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, nil, "service does not exist denied", "invalid", nil
		}
		if err != nil {
			return false, nil, "", "", d.dbErr("search bound service lookup", err)
		}
	case naming.KindUser:
		_, err := d.store.GetUserByUsername(bound.User)
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, nil, "user does not exist denied", "invalid", nil
		}
		if err != nil {
			return false, nil, "", "", d.dbErr("search bound user lookup", err)
		}
	default:
		return false, nil, "not bound denied", "invalid", nil
	}

	return d.searchUnderService(bound, baseDN)
}

// searchUnderService handles every base below the root. The base must sit
// under exactly the service the caller bound through; cross-service
// searches are always denied.
func (d *Directory) searchUnderService(bound naming.Name, baseDN string) (bool, []Entity, string, string, error) {
	serviceName, ok := d.resolver.TrailingService(baseDN)
	if !ok {
		return false, nil, "invalid search base denied", "invalid", nil
	}
	if bound.Kind == naming.KindService && bound.Service != serviceName {
		return false, nil, "mismatched bound service and search base denied", "invalid", nil
	}
	if bound.Kind == naming.KindUser && bound.Service != serviceName {
		return false, nil, "mismatched bound user in service and search base denied", "invalid", nil
	}

	service, err := d.store.GetServiceByName(serviceName)
	if errors.Is(err, store.ErrRecordNotFound) {
		return false, nil, "service does not exist denied", "invalid", nil
	}
	if err != nil {
		return false, nil, "", "", d.dbErr("search service lookup", err)
	}

	base := d.resolver.Resolve(baseDN)
	switch base.Kind {
	case naming.KindUsers:
		entities, err := d.allUserEntities(service)
		if err != nil {
			return false, nil, "", "", err
		}
		return true, entities, "users allowed", "users", nil

	case naming.KindGroups:
		entities, err := d.allGroupEntities(service)
		if err != nil {
			return false, nil, "", "", err
		}
		return true, entities, "groups allowed", "groups", nil

	case naming.KindUser:
		return d.searchSpecificUser(service, base.User)

	case naming.KindGroup:
		return d.searchSpecificGroup(service, base.Group)

	default:
		return false, nil, "invalid search base denied", "invalid", nil
	}
}

func (d *Directory) searchSpecificUser(service *models.Service, username string) (bool, []Entity, string, string, error) {
	user, err := d.store.GetUserByUsername(username)
	if errors.Is(err, store.ErrRecordNotFound) {
		return false, nil, "specific user does not exist denied", "user", nil
	}
	if err != nil {
		return false, nil, "", "", d.dbErr("search user lookup", err)
	}
	member, err := d.store.IsUserInService(user.ID, service.ID)
	if err != nil {
		return false, nil, "", "", d.dbErr("search user membership", err)
	}
	if !member {
		return false, nil, "specific user not in service denied", "user", nil
	}
	entity, err := d.userEntity(service, user)
	if err != nil {
		return false, nil, "", "", err
	}
	return true, []Entity{entity}, "specific user allowed", "user", nil
}

func (d *Directory) searchSpecificGroup(service *models.Service, name string) (bool, []Entity, string, string, error) {
	group, err := d.store.GetGroupByName(name)
	if errors.Is(err, store.ErrRecordNotFound) {
		return false, nil, "specific group does not exist denied", "group", nil
	}
	if err != nil {
		return false, nil, "", "", d.dbErr("search group lookup", err)
	}
	member, err := d.store.IsGroupInService(group.ID, service.ID)
	if err != nil {
		return false, nil, "", "", d.dbErr("search group membership", err)
	}
	if !member {
		return false, nil, "specific group not in service denied", "group", nil
	}
	entity, err := d.groupEntity(service, group)
	if err != nil {
		return false, nil, "", "", err
	}
	return true, []Entity{entity}, "specific group allowed", "group", nil
}

func (d *Directory) allUserEntities(service *models.Service) ([]Entity, error) {
	users, err := d.store.UsersInService(service.ID)
	if err != nil {
		return nil, d.dbErr("search users in service", err)
	}
	entities := make([]Entity, 0, len(users))
	for i := range users {
		entity, err := d.userEntity(service, &users[i])
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (d *Directory) allGroupEntities(service *models.Service) ([]Entity, error) {
	groups, err := d.store.GroupsInService(service.ID)
	if err != nil {
		return nil, d.dbErr("search groups in service", err)
	}
	entities := make([]Entity, 0, len(groups))
	for i := range groups {
		entity, err := d.groupEntity(service, &groups[i])
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
