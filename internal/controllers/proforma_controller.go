package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/entities"
	"ticket-system/internal/services"
	"ticket-system/pkg/utils"
)

type ProformaController struct {
	proformaService services.ProformaServiceInterface
	logger          *zap.Logger
}

func NewProformaController(proformaService services.ProformaServiceInterface, logger *zap.Logger) *ProformaController {
	return &ProformaController{proformaService: proformaService, logger: logger}
}

func (c *ProformaController) GetAccepted(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	proformas, total, err := c.proformaService.ListAccepted(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if proformas == nil {
		proformas = make([]entities.Proforma, 0)
	}
	return utils.SuccessResponse(ctx, proformas, "Принятые проформы", http.StatusOK, total)
}
