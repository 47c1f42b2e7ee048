package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

// ProformaStatusAccepted - единственный статус, с которым проформа может породить заявку.
const ProformaStatusAccepted = "Accepted"

type Proforma struct {
	ID             int64           `json:"id" db:"id"`
	ProformaNumber string          `json:"proforma_number" db:"proforma_number"`
	ProformaDate   time.Time       `json:"proforma_date" db:"proforma_date"`
	CustomerName   null.String     `json:"customer_name" db:"customer_name"`
	VehicleInfo    null.String     `json:"vehicle_info" db:"vehicle_info"`
	Status         string          `json:"status" db:"status"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	VatRate        decimal.Decimal `json:"vat_rate" db:"vat_rate"`
	VatAmount      decimal.Decimal `json:"vat_amount" db:"vat_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Notes          null.String     `json:"notes" db:"notes"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	Items          []ProformaItem  `json:"items" db:"-"`
}

func (p Proforma) IsAccepted() bool {
	return p.Status == ProformaStatusAccepted
}

type ProformaItem struct {
	ID          int64           `json:"id" db:"id"`
	ProformaID  int64           `json:"proforma_id" db:"proforma_id"`
	Description string          `json:"description" db:"description"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Total       decimal.Decimal `json:"total" db:"total"`
}
