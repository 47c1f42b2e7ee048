package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/controllers"
	"ticket-system/internal/services"
)

// Политика агрегации: список и карточка - мягкая (упавшая выборка дает []),
// выгрузка и счет - строгая (любая ошибка прерывает ответ).
func runTicketRouter(api *echo.Group, ticketService services.TicketServiceInterface, billingService services.BillingServiceInterface, logger *zap.Logger) {
	ticketCtrl := controllers.NewTicketController(ticketService, billingService, logger)

	tickets := api.Group("/tickets")
	tickets.GET("", ticketCtrl.GetTickets)
	tickets.GET("/export", ticketCtrl.ExportTickets)
	tickets.POST("", ticketCtrl.CreateTicket)
	tickets.GET("/:ticket_number", ticketCtrl.FindTicket)
	tickets.PATCH("/:ticket_number/status", ticketCtrl.TransitionStatus)
	tickets.POST("/:ticket_number/mechanic-assignments", ticketCtrl.AssignMechanic)
	tickets.POST("/:ticket_number/progress-logs", ticketCtrl.AddProgressLog)
	tickets.POST("/:ticket_number/inspections", ticketCtrl.RecordInspection)
	tickets.POST("/:ticket_number/bill", ticketCtrl.FinalizeBill)
}
