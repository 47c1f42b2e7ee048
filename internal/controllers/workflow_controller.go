package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ticket-system/internal/services"
	"ticket-system/pkg/utils"
)

type WorkflowController struct{}

func NewWorkflowController() *WorkflowController {
	return &WorkflowController{}
}

func (c *WorkflowController) GetStatuses(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, services.DescribeWorkflow(), "Статусы и представления", http.StatusOK)
}
