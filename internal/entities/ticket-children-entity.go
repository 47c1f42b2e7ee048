package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

type DisassembledPart struct {
	ID           int64       `json:"id" db:"id"`
	TicketNumber string      `json:"ticket_number" db:"ticket_number"`
	PartName     string      `json:"part_name" db:"part_name"`
	Condition    null.String `json:"condition" db:"condition"`
	Status       null.String `json:"status" db:"status"`
	Notes        null.String `json:"notes" db:"notes"`
	LoggedAt     time.Time   `json:"logged_at" db:"logged_at"`
}

type ProgressLog struct {
	ID           int64       `json:"id" db:"id"`
	TicketNumber string      `json:"ticket_number" db:"ticket_number"`
	Status       null.String `json:"status" db:"status"`
	Description  string      `json:"description" db:"description"`
	CreatedBy    null.String `json:"created_by" db:"created_by"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// Inspection хранит чек-лист в плоском виде, как в таблице inspections.
// Значения пунктов "булевоподобные": yes/no, ok, true/false и т.п.
type Inspection struct {
	ID                 int64       `db:"id"`
	TicketNumber       string      `db:"ticket_number"`
	MainIssueResolved  null.String `db:"main_issue_resolved"`
	ReassemblyVerified null.String `db:"reassembly_verified"`
	GeneralCondition   null.String `db:"general_condition"`
	Notes              null.String `db:"notes"`
	InspectionStatus   null.String `db:"inspection_status"`
	OilLevel           null.String `db:"oil_level"`
	OilCondition       null.String `db:"oil_condition"`
	BrakeFluid         null.String `db:"brake_fluid"`
	Coolant            null.String `db:"coolant"`
	PowerSteeringFluid null.String `db:"power_steering_fluid"`
	TirePressure       null.String `db:"tire_pressure"`
	TireTread          null.String `db:"tire_tread"`
	Lights             null.String `db:"lights"`
	Battery            null.String `db:"battery"`
	Wipers             null.String `db:"wipers"`
	InspectionDate     time.Time   `db:"inspection_date"`
}

type OrderedPart struct {
	ID           int64           `json:"id" db:"id"`
	TicketNumber string          `json:"ticket_number" db:"ticket_number"`
	ItemID       null.String     `json:"item_id" db:"item_id"`
	Name         string          `json:"name" db:"name"`
	Category     null.String     `json:"category" db:"category"`
	SKU          null.String     `json:"sku" db:"sku"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Status       string          `json:"status" db:"status"`
	Notes        null.String     `json:"notes" db:"notes"`
	OrderedAt    time.Time       `json:"ordered_at" db:"ordered_at"`
}

const OutsourceStockReceived = "Received"

type OutsourceStockRequest struct {
	ID           int64           `json:"id" db:"id"`
	TicketNumber string          `json:"ticket_number" db:"ticket_number"`
	Name         string          `json:"name" db:"name"`
	Category     null.String     `json:"category" db:"category"`
	SKU          null.String     `json:"sku" db:"sku"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	SourceShop   null.String     `json:"source_shop" db:"source_shop"`
	Status       string          `json:"status" db:"status"`
	RequestedAt  time.Time       `json:"requested_at" db:"requested_at"`
	ReceivedAt   null.Time       `json:"received_at" db:"received_at"`
}

type MechanicAssignment struct {
	ID           int64     `json:"id" db:"id"`
	TicketNumber string    `json:"ticket_number" db:"ticket_number"`
	MechanicID   string    `json:"mechanic_id" db:"mechanic_id"`
	MechanicName string    `json:"mechanic_name" db:"mechanic_name"`
	Status       string    `json:"status" db:"status"`
	AssignedAt   time.Time `json:"assigned_at" db:"assigned_at"`
}

// LineTotal - цена, умноженная на количество.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
