package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/controllers"
	"ticket-system/internal/services"
)

func runPaymentRouter(api *echo.Group, ledgerService services.PaymentLedgerServiceInterface, logger *zap.Logger) {
	paymentCtrl := controllers.NewPaymentController(ledgerService, logger)

	tickets := api.Group("/tickets/:ticket_number")
	tickets.GET("/payments", paymentCtrl.GetLedger)
	tickets.POST("/outsource-mechanics", paymentCtrl.RegisterMechanic)
	tickets.POST("/outsource-mechanics/payments", paymentCtrl.RecordPayment)
}
