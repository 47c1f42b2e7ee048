package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

const (
	BillStatusDraft     = "draft"
	BillStatusFinalized = "finalized"
)

// Bill - снимок суммы на момент создания; с проформой после этого не синхронизируется.
type Bill struct {
	ID                  int64           `json:"id" db:"id"`
	BillNumber          string          `json:"bill_number" db:"bill_number"`
	TicketNumber        string          `json:"ticket_number" db:"ticket_number"`
	ProformaID          null.Int64      `json:"proforma_id" db:"proforma_id"`
	LaborCost           decimal.Decimal `json:"labor_cost" db:"labor_cost"`
	PartsCost           decimal.Decimal `json:"parts_cost" db:"parts_cost"`
	OutsourcedPartsCost decimal.Decimal `json:"outsourced_parts_cost" db:"outsourced_parts_cost"`
	OutsourcedLaborCost decimal.Decimal `json:"outsourced_labor_cost" db:"outsourced_labor_cost"`
	Subtotal            decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxRate             decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	TaxAmount           decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	FinalTotal          decimal.Decimal `json:"final_total" db:"final_total"`
	Status              string          `json:"status" db:"status"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// BillFromProforma копирует итоги проформы; трудозатраты и запчасти обнуляются
// до последующей детализации.
func BillFromProforma(ticketNumber, billNumber string, p Proforma) Bill {
	return Bill{
		BillNumber:          billNumber,
		TicketNumber:        ticketNumber,
		ProformaID:          null.Int64From(p.ID),
		LaborCost:           decimal.Zero,
		PartsCost:           decimal.Zero,
		OutsourcedPartsCost: decimal.Zero,
		OutsourcedLaborCost: decimal.Zero,
		Subtotal:            p.Subtotal,
		TaxRate:             p.VatRate,
		TaxAmount:           p.VatAmount,
		FinalTotal:          p.TotalAmount,
		Status:              BillStatusDraft,
	}
}
