// Package directory is the decision core behind the LDAP front end: it
// resolves distinguished names, decides bind and search outcomes, and
// synthesizes directory entities from relational membership data.
package directory

import (
	"fmt"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/metrics"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/naming"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/password"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/store"
)

// Entity is a synthesized directory record, shaped to match the wire
// contract with the LDAP front end.
type Entity struct {
	DN         string              `json:"DN"`
	Attributes map[string][]string `json:"Attributes"`
}

// Directory decides bind and search operations. Every call is a stateless
// request-response unit; all identity state is fetched fresh from the
// store.
type Directory struct {
	store    *store.Store
	resolver *naming.Resolver
	tracker  password.LockoutTracker
	metrics  metrics.Recorder
}

func New(
	s *store.Store,
	resolver *naming.Resolver,
	tracker password.LockoutTracker,
	recorder metrics.Recorder,
) *Directory {
	return &Directory{
		store:    s,
		resolver: resolver,
		tracker:  tracker,
		metrics:  recorder,
	}
}

// Resolver exposes the naming resolver, for callers that render DNs.
func (d *Directory) Resolver() *naming.Resolver {
	return d.resolver
}

// dbErr records a store-layer failure and wraps it. Store failures
// propagate to the caller as operation errors, never as a denial.
func (d *Directory) dbErr(operation string, err error) error {
	d.metrics.RecordDatabaseQueryError(operation)
	return fmt.Errorf("%s: %w", operation, err)
}
