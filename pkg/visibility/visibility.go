package visibility

import (
	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
)

// Actor identifies the authenticated user performing a request.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// EnsureDeliveryVisible enforces the canonical ownership rule: admins see
// every delivery, agents only their own. Hidden records surface as not found
// rather than forbidden so record existence does not leak.
func EnsureDeliveryVisible(actor Actor, delivery *models.Delivery) error {
	if delivery == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
	}
	if actor.IsAdmin() {
		return nil
	}
	if delivery.UserID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
	}
	return nil
}

// OwnerFilter returns the user ID list queries must scope to, or nil when
// the actor can see every record.
func OwnerFilter(actor Actor) *uuid.UUID {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.UserID
	return &id
}
