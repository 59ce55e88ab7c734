// Package auth gates privileged operations behind the admin set.
//
// Server and connection management require admin; plain command
// execution against an already-connected session deliberately does
// not — any caller who can reach the bot while it is connected may
// execute.  That is the reference behavior, left as a deployment
// policy rather than enforced here.
package auth

import (
	"strings"

	sgerr "shellgate/internal/errors"
	"shellgate/internal/store"
)

// Gate answers "may this caller perform a privileged action".
type Gate struct {
	store store.Store
}

// New creates a Gate over the given store.
func New(s store.Store) *Gate { return &Gate{store: s} }

// IsPrivileged reports whether callerID is in the admin set.  A store
// read failure counts as not privileged; privileged paths must fail
// closed.
func (g *Gate) IsPrivileged(callerID string) bool {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return false
	}
	ids, err := g.store.Admins()
	if err != nil {
		return false
	}
	for _, id := range ids {
		if id == callerID {
			return true
		}
	}
	return false
}

// RequireAdmin returns ErrUnauthorized unless callerID is an admin.
func (g *Gate) RequireAdmin(callerID string) error {
	if !g.IsPrivileged(callerID) {
		return sgerr.ErrUnauthorized
	}
	return nil
}

// Add inserts a new admin identity.  Adding an existing admin is a
// no-op, matching the original behavior.
func (g *Gate) Add(newID string) error {
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return sgerr.Rejected(sgerr.MissingField, "admin id is required")
	}
	ids, err := g.store.Admins()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == newID {
			return nil
		}
	}
	return g.store.PutAdmins(append(ids, newID))
}

// List returns every admin identity in stored order.
func (g *Gate) List() ([]string, error) { return g.store.Admins() }
