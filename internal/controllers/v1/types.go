package v1

import (
	"github.com/palacehub/backend/internal/ledger"
	ph_uuid "github.com/palacehub/backend/internal/uuid"
)

// Controller carries the dependencies for the API handlers.
type Controller struct {
	Ledger *ledger.Service
}

type URIID struct {
	ID ph_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}
