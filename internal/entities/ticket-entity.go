package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"ticket-system/internal/workflow"
)

const (
	CustomerTypeIndividual = "individual"
	CustomerTypeCompany    = "company"
)

// Ticket - строка service_tickets. Status всегда уже нормализован.
type Ticket struct {
	ID           int64               `json:"id" db:"id"`
	TicketNumber string              `json:"ticket_number" db:"ticket_number"`
	CustomerType string              `json:"customer_type" db:"customer_type"`
	CustomerID   string              `json:"customer_id" db:"customer_id"`
	CustomerName string              `json:"customer_name" db:"customer_name"`
	VehicleID    null.Int64          `json:"vehicle_id" db:"vehicle_id"`
	VehicleInfo  string              `json:"vehicle_info" db:"vehicle_info"`
	LicensePlate string              `json:"license_plate" db:"license_plate"`
	Title        string              `json:"title" db:"title"`
	Description  string              `json:"description" db:"description"`
	Priority     string              `json:"priority" db:"priority"`
	Type         workflow.TicketType `json:"type" db:"type"`
	Status       workflow.Status     `json:"status" db:"status"`
	ProformaID   null.Int64          `json:"proforma_id" db:"proforma_id"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
	CompletedAt  null.Time           `json:"completed_at" db:"completed_at"`
}

func (t Ticket) IsInsurance() bool {
	return t.Type == workflow.TicketTypeInsurance
}
