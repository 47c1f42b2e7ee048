package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// InsuranceRecord - не более одной записи на заявку, только для type=insurance.
type InsuranceRecord struct {
	ID               int64       `json:"id" db:"id"`
	TicketNumber     string      `json:"ticket_number" db:"ticket_number"`
	CustomerType     string      `json:"customer_type" db:"customer_type"`
	CustomerID       string      `json:"customer_id" db:"customer_id"`
	OwnerName        string      `json:"owner_name" db:"owner_name"`
	Phone            null.String `json:"phone" db:"phone"`
	Email            null.String `json:"email" db:"email"`
	VehicleInfo      null.String `json:"vehicle_info" db:"vehicle_info"`
	LicensePlate     null.String `json:"license_plate" db:"license_plate"`
	InsuranceCompany null.String `json:"insurance_company" db:"insurance_company"`
	PolicyNumber     null.String `json:"policy_number" db:"policy_number"`
	AccidentDate     null.Time   `json:"accident_date" db:"accident_date"`
	AccidentLocation null.String `json:"accident_location" db:"accident_location"`
	Description      null.String `json:"description" db:"description"`
	Status           string      `json:"status" db:"status"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}
