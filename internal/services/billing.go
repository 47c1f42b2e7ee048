package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/repositories"
	"ticket-system/internal/workflow"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

type BillingServiceInterface interface {
	FinalizeBill(ctx context.Context, ticketNumber string, in dto.FinalizeBillDTO) (*entities.Bill, error)
}

type BillingService struct {
	tickets     repositories.TicketRepositoryInterface
	bills       repositories.BillRepositoryInterface
	aggregation AggregationServiceInterface
	logger      *zap.Logger
}

func NewBillingService(
	tickets repositories.TicketRepositoryInterface,
	bills repositories.BillRepositoryInterface,
	aggregation AggregationServiceInterface,
	logger *zap.Logger,
) BillingServiceInterface {
	return &BillingService{tickets: tickets, bills: bills, aggregation: aggregation, logger: logger}
}

// ComputeBill считает детализированный счет по полной агрегации заявки.
// Сторонние запчасти учитываются только полученные, налог = subtotal * rate / 100.
func ComputeBill(agg dto.AggregatedTicketDTO, laborCost, taxRate decimal.Decimal) entities.Bill {
	parts := decimal.Zero
	for _, p := range agg.OrderedParts {
		parts = parts.Add(entities.LineTotal(p.Price, p.Quantity))
	}

	outsourcedParts := decimal.Zero
	for _, st := range agg.OutsourceStock {
		if st.Status == entities.OutsourceStockReceived {
			outsourcedParts = outsourcedParts.Add(entities.LineTotal(st.Price, st.Quantity))
		}
	}

	outsourcedLabor := decimal.Zero
	for _, m := range agg.OutsourcedMechanics {
		outsourcedLabor = outsourcedLabor.Add(m.AgreedPayment)
	}

	subtotal := laborCost.Add(parts).Add(outsourcedParts).Add(outsourcedLabor)
	tax := subtotal.Mul(taxRate).Div(hundred).Round(2)

	return entities.Bill{
		TicketNumber:        agg.TicketNumber,
		LaborCost:           laborCost,
		PartsCost:           parts,
		OutsourcedPartsCost: outsourcedParts,
		OutsourcedLaborCost: outsourcedLabor,
		Subtotal:            subtotal,
		TaxRate:             taxRate,
		TaxAmount:           tax,
		FinalTotal:          subtotal.Add(tax),
		Status:              entities.BillStatusFinalized,
	}
}

// FinalizeBill пересчитывает счет заявки. Данные нужны полностью, поэтому агрегация строгая.
func (s *BillingService) FinalizeBill(ctx context.Context, ticketNumber string, in dto.FinalizeBillDTO) (*entities.Bill, error) {
	if in.LaborCost.IsNegative() || in.TaxRate.IsNegative() {
		return nil, apperrors.NewInvalidInputError("стоимость работ и ставка налога не могут быть отрицательными")
	}

	ticket, err := s.tickets.FindByNumber(ctx, nil, ticketNumber)
	if err != nil {
		return nil, err
	}
	if ticket.Status == workflow.StatusCancelled {
		return nil, apperrors.NewInvalidInputError("заявка %s отменена, счет не выставляется", ticketNumber)
	}

	aggregated, err := s.aggregation.Aggregate(ctx, []entities.Ticket{*ticket}, AggregateOptions{
		Projection: ProjectionFull,
		Mode:       FailHard,
	})
	if err != nil {
		return nil, err
	}

	bill := ComputeBill(aggregated[0], in.LaborCost, in.TaxRate)
	bill.ProformaID = ticket.ProformaID
	bill.BillNumber = newBillNumber(ticket.CreatedAt)

	saved, err := s.bills.Upsert(ctx, nil, bill)
	if err != nil {
		return nil, err
	}
	utils.LoggerFromCtx(ctx, s.logger).Info("Счет по заявке сформирован",
		zap.String("ticket_number", ticketNumber),
		zap.String("bill_number", saved.BillNumber),
		zap.String("final_total", saved.FinalTotal.StringFixed(2)),
	)
	return saved, nil
}
