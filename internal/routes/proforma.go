package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/controllers"
	"ticket-system/internal/services"
)

func runProformaRouter(api *echo.Group, proformaService services.ProformaServiceInterface, logger *zap.Logger) {
	proformaCtrl := controllers.NewProformaController(proformaService, logger)

	api.GET("/proformas/accepted", proformaCtrl.GetAccepted)
}

func runWorkflowRouter(api *echo.Group) {
	workflowCtrl := controllers.NewWorkflowController()

	api.GET("/workflow/statuses", workflowCtrl.GetStatuses)
}
