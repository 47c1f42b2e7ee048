package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/controllers"
	"ticket-system/internal/services"
)

func runToolRouter(api *echo.Group, toolService services.ToolServiceInterface, logger *zap.Logger) {
	toolCtrl := controllers.NewToolController(toolService, logger)

	api.POST("/tools/:id/assign", toolCtrl.AssignTool)
	api.POST("/tool-assignments/:id/return", toolCtrl.ReturnTool)
}
