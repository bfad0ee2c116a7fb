package service

import "github.com/google/uuid"

// Actor identifies who is performing a mutation. It is threaded explicitly
// through every service call instead of living in ambient request state, so
// the expiration sweeper can act without a user. Ledger entries snapshot
// UserName at write time.
type Actor struct {
	UserID   *uuid.UUID // nil for the system sweeper
	UserName string
	TenantID uuid.UUID
}

// SystemActor is the identity used by background jobs.
func SystemActor(tenantID uuid.UUID) Actor {
	return Actor{UserName: "system", TenantID: tenantID}
}
