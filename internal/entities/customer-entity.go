package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type IndividualCustomer struct {
	CustomerID string      `db:"customer_id"`
	Name       string      `db:"name"`
	Phone      null.String `db:"phone"`
	Email      null.String `db:"email"`
	Address    null.String `db:"address"`
}

type CompanyCustomer struct {
	CustomerID    string      `db:"customer_id"`
	CompanyName   string      `db:"company_name"`
	ContactPerson null.String `db:"contact_person"`
	Phone         null.String `db:"phone"`
	Email         null.String `db:"email"`
	Address       null.String `db:"address"`
}

type Vehicle struct {
	ID           int64       `json:"id" db:"id"`
	CustomerID   string      `json:"customer_id" db:"customer_id"`
	CustomerType string      `json:"customer_type" db:"customer_type"`
	Make         null.String `json:"make" db:"make"`
	Model        null.String `json:"model" db:"model"`
	Year         null.Int    `json:"year" db:"year"`
	LicensePlate string      `json:"license_plate" db:"license_plate"`
	ImageURL     null.String `json:"image_url" db:"image_url"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
