package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"ticket-system/internal/entities"
)

type RegisterOutsourcedMechanicDTO struct {
	MechanicName  string          `json:"mechanic_name" validate:"required,max=255"`
	AgreedPayment decimal.Decimal `json:"agreed_payment" validate:"non_negative_decimal"`
	Phone         *string         `json:"phone,omitempty"`
	WorkDone      *string         `json:"work_done,omitempty"`
	WorkDate      *time.Time      `json:"work_date,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

type RecordPaymentDTO struct {
	MechanicName  string          `json:"mechanic_name" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"positive_decimal"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

// MechanicLedgerDTO - сводка по одному стороннему механику заявки.
// RemainingBalance может быть отрицательным при переплате.
type MechanicLedgerDTO struct {
	TicketNumber     string                        `json:"ticket_number"`
	MechanicName     string                        `json:"mechanic_name"`
	AgreedPayment    decimal.Decimal               `json:"agreed_payment"`
	TotalPaid        decimal.Decimal               `json:"total_paid"`
	RemainingBalance decimal.Decimal               `json:"remaining_balance"`
	Installments     []entities.PaymentInstallment `json:"installments"`
}
