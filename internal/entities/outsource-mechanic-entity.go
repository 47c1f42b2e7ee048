package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

// OutsourcedMechanic - договоренность со сторонним механиком по заявке.
// Пара (ticket_number, mechanic_name) уникальна.
type OutsourcedMechanic struct {
	ID            int64           `json:"id" db:"id"`
	TicketNumber  string          `json:"ticket_number" db:"ticket_number"`
	MechanicName  string          `json:"mechanic_name" db:"mechanic_name"`
	Phone         null.String     `json:"phone" db:"phone"`
	WorkDone      null.String     `json:"work_done" db:"work_done"`
	AgreedPayment decimal.Decimal `json:"agreed_payment" db:"agreed_payment"`
	WorkDate      null.Time       `json:"work_date" db:"work_date"`
	Notes         null.String     `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// PaymentInstallment только добавляется, исторические записи не меняются.
type PaymentInstallment struct {
	ID            int64           `json:"id" db:"id"`
	TicketNumber  string          `json:"ticket_number" db:"ticket_number"`
	MechanicName  string          `json:"mechanic_name" db:"mechanic_name"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	PaymentMethod null.String     `json:"payment_method" db:"payment_method"`
	Notes         null.String     `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
