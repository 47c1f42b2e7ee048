package dto

type AssignToolDTO struct {
	TicketNumber string `json:"ticket_number" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	AssignedBy   string `json:"assigned_by" validate:"required"`
}

type ReturnToolDTO struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ToolOperationResultDTO - ответ операций выдачи и возврата инструмента.
type ToolOperationResultDTO struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	AssignmentID      int64  `json:"assignment_id,omitempty"`
	AvailableQuantity *int   `json:"available_quantity,omitempty"`
}
