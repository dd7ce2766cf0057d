package deliveries

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the delivery list.
type ListFilters struct {
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
	Client   string     `json:"client,omitempty"`
	SandType string     `json:"sand_type,omitempty"`
}

// ListQuery is what the repository executes after the service has applied
// visibility scoping.
type ListQuery struct {
	OwnerID    *uuid.UUID
	Filters    ListFilters
	Pagination pagination.Params
}
