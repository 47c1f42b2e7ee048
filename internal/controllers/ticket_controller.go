package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/services"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/utils"
)

type TicketController struct {
	ticketService  services.TicketServiceInterface
	billingService services.BillingServiceInterface
	logger         *zap.Logger
}

func NewTicketController(
	ticketService services.TicketServiceInterface,
	billingService services.BillingServiceInterface,
	logger *zap.Logger,
) *TicketController {
	return &TicketController{
		ticketService:  ticketService,
		billingService: billingService,
		logger:         logger,
	}
}

// GetTickets: /api/tickets?view=active&search=..&filter[priority]=high&sort[created_at]=desc&page=1&limit=20
func (c *TicketController) GetTickets(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	tickets, total, err := c.ticketService.ListTickets(reqCtx, ctx.QueryParam("view"), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if tickets == nil {
		tickets = make([]dto.AggregatedTicketDTO, 0)
	}
	return utils.SuccessResponse(ctx, tickets, "Список заявок успешно получен", http.StatusOK, total)
}

func (c *TicketController) FindTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ticket, err := c.ticketService.GetTicket(reqCtx, ctx.Param("ticket_number"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, ticket, "Заявка успешно получена", http.StatusOK)
}

func (c *TicketController) CreateTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var req dto.CreateTicketDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ticket, warnings, err := c.ticketService.CreateTicket(reqCtx, req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res := dto.CreateTicketResponseDTO{Ticket: *ticket, Warnings: make([]string, 0, len(warnings))}
	for _, w := range warnings {
		res.Warnings = append(res.Warnings, w.String())
	}
	message := "Заявка успешно создана"
	if len(warnings) > 0 {
		message = "Заявка создана, часть дополнительных шагов не выполнена"
	}
	return utils.SuccessResponse(ctx, res, message, http.StatusCreated)
}

func (c *TicketController) TransitionStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var req dto.TransitionTicketDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ticket, err := c.ticketService.TransitionStatus(reqCtx, ctx.Param("ticket_number"), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, ticket, "Статус заявки изменен", http.StatusOK)
}

func (c *TicketController) AssignMechanic(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var req dto.AssignMechanicDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.ticketService.AssignMechanic(reqCtx, ctx.Param("ticket_number"), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Механик назначен", http.StatusCreated)
}

func (c *TicketController) AddProgressLog(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var req dto.CreateProgressLogDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	entry, err := c.ticketService.AddProgressLog(reqCtx, ctx.Param("ticket_number"), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, entry, "Запись добавлена в журнал работ", http.StatusCreated)
}

func (c *TicketController) RecordInspection(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var req dto.CreateInspectionDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.ticketService.RecordInspection(reqCtx, ctx.Param("ticket_number"), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Результат проверки записан", http.StatusCreated)
}

func (c *TicketController) FinalizeBill(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var req dto.FinalizeBillDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	bill, err := c.billingService.FinalizeBill(reqCtx, ctx.Param("ticket_number"), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, bill, "Счет сформирован", http.StatusOK)
}
