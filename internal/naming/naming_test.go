package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver("")

	tests := []struct {
		name string
		dn   string
		want Name
	}{
		{"root", "", Name{Kind: KindRoot}},
		{
			"service",
			"ou=alpha,ou=services,dc=daniel-authenticator",
			Name{Kind: KindService, Service: "alpha"},
		},
		{
			"users collection",
			"ou=users,ou=alpha,ou=services,dc=daniel-authenticator",
			Name{Kind: KindUsers, Service: "alpha"},
		},
		{
			"groups collection",
			"ou=groups,ou=alpha,ou=services,dc=daniel-authenticator",
			Name{Kind: KindGroups, Service: "alpha"},
		},
		{
			"user",
			"uid=bob,ou=users,ou=alpha,ou=services,dc=daniel-authenticator",
			Name{Kind: KindUser, User: "bob", Service: "alpha"},
		},
		{
			"group",
			"uid=admins,ou=groups,ou=alpha,ou=services,dc=daniel-authenticator",
			Name{Kind: KindGroup, Group: "admins", Service: "alpha"},
		},
		{
			"dotted and dashed names",
			"uid=bob.smith-2@corp,ou=users,ou=alpha_1,ou=services,dc=daniel-authenticator",
			Name{Kind: KindUser, User: "bob.smith-2@corp", Service: "alpha_1"},
		},
		{"wrong base", "ou=alpha,ou=services,dc=example", Name{Kind: KindInvalid}},
		{"bare base", "dc=daniel-authenticator", Name{Kind: KindInvalid}},
		{"missing service", "ou=users,ou=services,dc=daniel-authenticator", Name{Kind: KindInvalid}},
		{
			"illegal character",
			"ou=al pha,ou=services,dc=daniel-authenticator",
			Name{Kind: KindInvalid},
		},
		{
			"prefixed service is not a service",
			"cn=x,ou=alpha,ou=services,dc=daniel-authenticator",
			Name{Kind: KindInvalid},
		},
		{
			"user under unknown collection",
			"uid=bob,ou=machines,ou=alpha,ou=services,dc=daniel-authenticator",
			Name{Kind: KindInvalid},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.dn))
		})
	}
}

func TestTrailingService(t *testing.T) {
	r := NewResolver("")

	tests := []struct {
		name    string
		dn      string
		service string
		ok      bool
	}{
		{"service itself", "ou=alpha,ou=services,dc=daniel-authenticator", "alpha", true},
		{"users collection", "ou=users,ou=alpha,ou=services,dc=daniel-authenticator", "alpha", true},
		{"user", "uid=bob,ou=users,ou=alpha,ou=services,dc=daniel-authenticator", "alpha", true},
		{"arbitrary prefix", "cn=x,ou=alpha,ou=services,dc=daniel-authenticator", "alpha", true},
		{"root", "", "", false},
		{"wrong base", "ou=alpha,ou=services,dc=example", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, ok := r.TrailingService(tt.dn)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.service, service)
		})
	}
}

func TestDNBuilders(t *testing.T) {
	r := NewResolver("dc=example,dc=org")

	assert.Equal(t, "ou=alpha,ou=services,dc=example,dc=org", r.ServiceDN("alpha"))
	assert.Equal(t, "ou=users,ou=alpha,ou=services,dc=example,dc=org", r.UsersDN("alpha"))
	assert.Equal(t, "ou=groups,ou=alpha,ou=services,dc=example,dc=org", r.GroupsDN("alpha"))
	assert.Equal(t, "uid=bob,ou=users,ou=alpha,ou=services,dc=example,dc=org", r.UserDN("bob", "alpha"))
	assert.Equal(t, "uid=admins,ou=groups,ou=alpha,ou=services,dc=example,dc=org", r.GroupDN("admins", "alpha"))

	// Built DNs resolve back to the same components.
	got := r.Resolve(r.UserDN("bob", "alpha"))
	assert.Equal(t, Name{Kind: KindUser, User: "bob", Service: "alpha"}, got)
}
