package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"ticket-system/internal/entities"
	"ticket-system/internal/workflow"
)

// CreateTicketDTO - обязательность полей проверяет сервис, чтобы вернуть
// сразу весь список пропущенных полей. Теги здесь проверяют только формат.
type CreateTicketDTO struct {
	CustomerType string `json:"customer_type" validate:"omitempty,customer_type"`
	CustomerID   string `json:"customer_id" validate:"omitempty,max=64"`
	CustomerName string `json:"customer_name" validate:"omitempty,max=255"`
	VehicleInfo  string `json:"vehicle_info" validate:"omitempty,max=255"`
	LicensePlate string `json:"license_plate" validate:"omitempty,max=32"`
	Title        string `json:"title" validate:"omitempty,max=255"`
	Description  string `json:"description"`
	Priority     string `json:"priority" validate:"omitempty,max=32"`
	Type         string `json:"type" validate:"omitempty,ticket_type"`
	ProformaID   *int64 `json:"proforma_id,omitempty" validate:"omitempty,gt=0"`

	// Данные профиля клиента
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Address       *string `json:"address,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`

	// Данные автомобиля
	VehicleMake  *string `json:"vehicle_make,omitempty"`
	VehicleModel *string `json:"vehicle_model,omitempty"`
	VehicleYear  *int    `json:"vehicle_year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	ImageURL     *string `json:"image_url,omitempty"`

	Insurance *InsuranceDetailsDTO `json:"insurance,omitempty"`
}

type InsuranceDetailsDTO struct {
	InsuranceCompany *string    `json:"insurance_company,omitempty"`
	PolicyNumber     *string    `json:"policy_number,omitempty"`
	AccidentDate     *time.Time `json:"accident_date,omitempty"`
	AccidentLocation *string    `json:"accident_location,omitempty"`
	Description      *string    `json:"description,omitempty"`
}

type TransitionTicketDTO struct {
	Status  string  `json:"status" validate:"required"`
	Comment *string `json:"comment,omitempty"`
	Actor   *string `json:"actor,omitempty"`
}

type AssignMechanicDTO struct {
	MechanicID   string `json:"mechanic_id" validate:"required"`
	MechanicName string `json:"mechanic_name" validate:"required"`
}

type CreateProgressLogDTO struct {
	Description string  `json:"description" validate:"required"`
	Status      *string `json:"status,omitempty"`
	CreatedBy   *string `json:"created_by,omitempty"`
}

// CreateInspectionDTO - пункты чек-листа принимаются в "булевоподобном" виде.
type CreateInspectionDTO struct {
	InspectionStatus   string  `json:"inspection_status" validate:"required"`
	MainIssueResolved  *string `json:"main_issue_resolved,omitempty"`
	ReassemblyVerified *string `json:"reassembly_verified,omitempty"`
	GeneralCondition   *string `json:"general_condition,omitempty"`
	Notes              *string `json:"notes,omitempty"`

	Checklist map[string]string `json:"checklist,omitempty"`
}

type FinalizeBillDTO struct {
	LaborCost decimal.Decimal `json:"labor_cost" validate:"non_negative_decimal"`
	TaxRate   decimal.Decimal `json:"tax_rate" validate:"non_negative_decimal"`
}

// InspectionChecklist - вложенное представление десяти пунктов осмотра.
// nil означает, что значение не заполнено или не распознано.
type InspectionChecklist struct {
	OilLevel           *bool `json:"oil_level"`
	OilCondition       *bool `json:"oil_condition"`
	BrakeFluid         *bool `json:"brake_fluid"`
	Coolant            *bool `json:"coolant"`
	PowerSteeringFluid *bool `json:"power_steering_fluid"`
	TirePressure       *bool `json:"tire_pressure"`
	TireTread          *bool `json:"tire_tread"`
	Lights             *bool `json:"lights"`
	Battery            *bool `json:"battery"`
	Wipers             *bool `json:"wipers"`
}

type InspectionDTO struct {
	ID                 int64               `json:"id"`
	TicketNumber       string              `json:"ticket_number"`
	MainIssueResolved  *bool               `json:"main_issue_resolved"`
	ReassemblyVerified *bool               `json:"reassembly_verified"`
	GeneralCondition   *string             `json:"general_condition"`
	Notes              *string             `json:"notes"`
	InspectionStatus   string              `json:"inspection_status"`
	InspectionDate     time.Time           `json:"inspection_date"`
	Checklist          InspectionChecklist `json:"checklist"`
}

// AggregatedTicketDTO - заявка вместе со всеми дочерними записями.
// Коллекции никогда не бывают null: при отсутствии данных отдается [].
type AggregatedTicketDTO struct {
	ID           int64               `json:"id"`
	TicketNumber string              `json:"ticket_number"`
	CustomerType string              `json:"customer_type"`
	CustomerID   string              `json:"customer_id"`
	CustomerName string              `json:"customer_name"`
	VehicleID    *int64              `json:"vehicle_id"`
	VehicleInfo  string              `json:"vehicle_info"`
	LicensePlate string              `json:"license_plate"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Priority     string              `json:"priority"`
	Type         workflow.TicketType `json:"type"`
	Status       workflow.Status     `json:"status"`
	ProformaID   *int64              `json:"proforma_id"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	CompletedAt  *time.Time          `json:"completed_at"`

	VehicleImageURL string `json:"vehicle_image_url,omitempty"`
	Projection      string `json:"projection"`

	DisassembledParts   []entities.DisassembledPart      `json:"disassembled_parts"`
	ProgressLogs        []entities.ProgressLog           `json:"progress_logs"`
	Inspections         []InspectionDTO                  `json:"inspections"`
	OutsourcedMechanics []entities.OutsourcedMechanic    `json:"outsourced_mechanics"`
	MechanicPayments    []entities.PaymentInstallment    `json:"mechanic_payments"`
	OutsourceStock      []entities.OutsourceStockRequest `json:"outsource_stock"`
	OrderedParts        []entities.OrderedPart           `json:"ordered_parts"`
	ToolAssignments     []entities.ToolAssignment        `json:"tool_assignments"`
	MechanicAssignments []entities.MechanicAssignment    `json:"mechanic_assignments"`
	Insurance           *entities.InsuranceRecord        `json:"insurance"`
}

// CreateTicketResponseDTO - основной результат и отдельный канал предупреждений.
type CreateTicketResponseDTO struct {
	Ticket   entities.Ticket `json:"ticket"`
	Warnings []string        `json:"warnings"`
}

type StatusInfoDTO struct {
	Status   workflow.Status   `json:"status"`
	Terminal bool              `json:"terminal"`
	Next     []workflow.Status `json:"next_service"`
	NextIns  []workflow.Status `json:"next_insurance"`
}

type ViewInfoDTO struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Statuses    []workflow.Status `json:"statuses"`
}

type WorkflowDTO struct {
	Statuses []StatusInfoDTO `json:"statuses"`
	Views    []ViewInfoDTO   `json:"views"`
}

// InspectionResultDTO - записанная проверка и заявка после возможной смены статуса.
type InspectionResultDTO struct {
	Inspection InspectionDTO   `json:"inspection"`
	Ticket     entities.Ticket `json:"ticket"`
}

type MechanicAssignmentResultDTO struct {
	Assignment entities.MechanicAssignment `json:"assignment"`
	Ticket     entities.Ticket             `json:"ticket"`
}
