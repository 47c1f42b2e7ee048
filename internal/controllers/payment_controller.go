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

type PaymentController struct {
	ledgerService services.PaymentLedgerServiceInterface
	logger        *zap.Logger
}

func NewPaymentController(ledgerService services.PaymentLedgerServiceInterface, logger *zap.Logger) *PaymentController {
	return &PaymentController{ledgerService: ledgerService, logger: logger}
}

func (c *PaymentController) GetLedger(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ledger, err := c.ledgerService.Ledger(reqCtx, ctx.Param("ticket_number"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, ledger, "Расчеты со сторонними механиками", http.StatusOK)
}

func (c *PaymentController) RegisterMechanic(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var req dto.RegisterOutsourcedMechanicDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	mechanic, err := c.ledgerService.RegisterMechanic(reqCtx, ctx.Param("ticket_number"), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, mechanic, "Сторонний механик зарегистрирован", http.StatusCreated)
}

func (c *PaymentController) RecordPayment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var req dto.RecordPaymentDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ledger, err := c.ledgerService.RecordPayment(reqCtx, ctx.Param("ticket_number"), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, ledger, "Выплата записана", http.StatusCreated)
}
