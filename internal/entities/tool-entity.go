package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

const (
	ToolAssignmentInUse    = "In Use"
	ToolAssignmentReturned = "Returned"
)

type Tool struct {
	ID                int64       `json:"id" db:"id"`
	Name              string      `json:"name" db:"name"`
	Category          null.String `json:"category" db:"category"`
	TotalQuantity     int         `json:"total_quantity" db:"total_quantity"`
	AvailableQuantity int         `json:"available_quantity" db:"available_quantity"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

type ToolAssignment struct {
	ID               int64     `json:"id" db:"id"`
	ToolID           int64     `json:"tool_id" db:"tool_id"`
	TicketNumber     string    `json:"ticket_number" db:"ticket_number"`
	ToolName         string    `json:"tool_name" db:"tool_name"`
	AssignedQuantity int       `json:"assigned_quantity" db:"assigned_quantity"`
	ReturnedQuantity int       `json:"returned_quantity" db:"returned_quantity"`
	AssignedBy       string    `json:"assigned_by" db:"assigned_by"`
	Status           string    `json:"status" db:"status"`
	AssignedAt       time.Time `json:"assigned_at" db:"assigned_at"`
	ReturnedAt       null.Time `json:"returned_at" db:"returned_at"`
}

// Outstanding - сколько единиц еще не возвращено.
func (a ToolAssignment) Outstanding() int {
	return a.AssignedQuantity - a.ReturnedQuantity
}
