package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/services"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/utils"
)

type ToolController struct {
	toolService services.ToolServiceInterface
	logger      *zap.Logger
}

func NewToolController(toolService services.ToolServiceInterface, logger *zap.Logger) *ToolController {
	return &ToolController{toolService: toolService, logger: logger}
}

func (c *ToolController) AssignTool(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	toolID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID инструмента", err, nil), c.logger)
	}

	var req dto.AssignToolDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.toolService.AssignTool(reqCtx, toolID, req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, res.Message, http.StatusCreated)
}

func (c *ToolController) ReturnTool(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	assignmentID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID выдачи", err, nil), c.logger)
	}

	var req dto.ReturnToolDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.toolService.ReturnTool(reqCtx, assignmentID, req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, res.Message, http.StatusOK)
}
