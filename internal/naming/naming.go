// Package naming parses and builds distinguished names against the fixed
// directory schema:
//
//	""                                          root
//	ou=<service>,ou=services,<base>             service
//	ou=users,ou=<service>,ou=services,<base>    users collection
//	ou=groups,ou=<service>,ou=services,<base>   groups collection
//	uid=<user>,ou=users,...                     specific user
//	uid=<group>,ou=groups,...                   specific group
//
// Component names are restricted to [A-Za-z0-9_.@-]+.
package naming

import (
	"fmt"
	"regexp"
)

// DefaultBaseDN is the root of the naming tree unless overridden by
// configuration.
const DefaultBaseDN = "dc=daniel-authenticator"

// Kind classifies a distinguished name.
type Kind int

const (
	KindInvalid Kind = iota
	KindRoot
	KindService
	KindUsers
	KindGroups
	KindUser
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindService:
		return "service"
	case KindUsers:
		return "users"
	case KindGroups:
		return "groups"
	case KindUser:
		return "user"
	case KindGroup:
		return "group"
	default:
		return "invalid"
	}
}

// Name is the result of resolving a DN: its kind plus the component names
// embedded in it. Service is set for every kind except root and invalid;
// User and Group only for KindUser and KindGroup respectively.
type Name struct {
	Kind    Kind
	Service string
	User    string
	Group   string
}

const namePattern = `[a-zA-Z0-9_\-.@]+`

// Resolver matches DNs under a single base DN. The exact-match patterns and
// the trailing-match pattern are deliberately separate: a DN that merely
// ends in a valid service suffix is not itself a service DN.
type Resolver struct {
	baseDN string

	service         *regexp.Regexp
	trailingService *regexp.Regexp
	users           *regexp.Regexp
	groups          *regexp.Regexp
	user            *regexp.Regexp
	group           *regexp.Regexp
}

// NewResolver builds a resolver rooted at baseDN, falling back to
// DefaultBaseDN when empty.
func NewResolver(baseDN string) *Resolver {
	if baseDN == "" {
		baseDN = DefaultBaseDN
	}
	services := `ou=services,` + regexp.QuoteMeta(baseDN)
	return &Resolver{
		baseDN:          baseDN,
		service:         regexp.MustCompile(`^ou=(` + namePattern + `),` + services + `$`),
		trailingService: regexp.MustCompile(`ou=(` + namePattern + `),` + services + `$`),
		users:           regexp.MustCompile(`^ou=users,ou=(` + namePattern + `),` + services + `$`),
		groups:          regexp.MustCompile(`^ou=groups,ou=(` + namePattern + `),` + services + `$`),
		user:            regexp.MustCompile(`^uid=(` + namePattern + `),ou=users,ou=(` + namePattern + `),` + services + `$`),
		group:           regexp.MustCompile(`^uid=(` + namePattern + `),ou=groups,ou=(` + namePattern + `),` + services + `$`),
	}
}

// BaseDN returns the root of the naming tree.
func (r *Resolver) BaseDN() string {
	return r.baseDN
}

// Resolve classifies dn with anchored, exact matching.
func (r *Resolver) Resolve(dn string) Name {
	if dn == "" {
		return Name{Kind: KindRoot}
	}
	if m := r.user.FindStringSubmatch(dn); m != nil {
		return Name{Kind: KindUser, User: m[1], Service: m[2]}
	}
	if m := r.group.FindStringSubmatch(dn); m != nil {
		return Name{Kind: KindGroup, Group: m[1], Service: m[2]}
	}
	if m := r.users.FindStringSubmatch(dn); m != nil {
		return Name{Kind: KindUsers, Service: m[1]}
	}
	if m := r.groups.FindStringSubmatch(dn); m != nil {
		return Name{Kind: KindGroups, Service: m[1]}
	}
	if m := r.service.FindStringSubmatch(dn); m != nil {
		return Name{Kind: KindService, Service: m[1]}
	}
	return Name{Kind: KindInvalid}
}

// TrailingService reports the service a DN sits under, matching any DN that
// ends in a service suffix. Used to check that a search base belongs to the
// bound service; never for classifying the DN itself.
func (r *Resolver) TrailingService(dn string) (string, bool) {
	m := r.trailingService.FindStringSubmatch(dn)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ServiceDN renders the DN of a service subtree.
func (r *Resolver) ServiceDN(service string) string {
	return fmt.Sprintf("ou=%s,ou=services,%s", service, r.baseDN)
}

// UsersDN renders the DN of a service's users collection.
func (r *Resolver) UsersDN(service string) string {
	return "ou=users," + r.ServiceDN(service)
}

// GroupsDN renders the DN of a service's groups collection.
func (r *Resolver) GroupsDN(service string) string {
	return "ou=groups," + r.ServiceDN(service)
}

// UserDN renders the addressable name of a user inside a service.
func (r *Resolver) UserDN(user, service string) string {
	return fmt.Sprintf("uid=%s,%s", user, r.UsersDN(service))
}

// GroupDN renders the addressable name of a group inside a service.
func (r *Resolver) GroupDN(group, service string) string {
	return fmt.Sprintf("uid=%s,%s", group, r.GroupsDN(service))
}
