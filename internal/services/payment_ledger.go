package services

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/repositories"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/utils"
)

type PaymentLedgerServiceInterface interface {
	RegisterMechanic(ctx context.Context, ticketNumber string, in dto.RegisterOutsourcedMechanicDTO) (*entities.OutsourcedMechanic, error)
	RecordPayment(ctx context.Context, ticketNumber string, in dto.RecordPaymentDTO) (*dto.MechanicLedgerDTO, error)
	Ledger(ctx context.Context, ticketNumber string) ([]dto.MechanicLedgerDTO, error)
}

type PaymentLedgerService struct {
	tickets   repositories.TicketRepositoryInterface
	mechanics repositories.OutsourceMechanicRepositoryInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewPaymentLedgerService(
	tickets repositories.TicketRepositoryInterface,
	mechanics repositories.OutsourceMechanicRepositoryInterface,
	logger *zap.Logger,
) *PaymentLedgerService {
	return &PaymentLedgerService{tickets: tickets, mechanics: mechanics, logger: logger, now: time.Now}
}

// BuildLedger: total_paid - сумма выплат, remaining_balance = agreed_payment - total_paid
// без ограничения снизу. Переплата дает отрицательный остаток.
func BuildLedger(m entities.OutsourcedMechanic, payments []entities.PaymentInstallment) dto.MechanicLedgerDTO {
	paid := decimal.Zero
	installments := make([]entities.PaymentInstallment, 0, len(payments))
	for _, p := range payments {
		if p.MechanicName != m.MechanicName {
			continue
		}
		paid = paid.Add(p.Amount)
		installments = append(installments, p)
	}
	return dto.MechanicLedgerDTO{
		TicketNumber:     m.TicketNumber,
		MechanicName:     m.MechanicName,
		AgreedPayment:    m.AgreedPayment,
		TotalPaid:        paid,
		RemainingBalance: m.AgreedPayment.Sub(paid),
		Installments:     installments,
	}
}

func (s *PaymentLedgerService) RegisterMechanic(ctx context.Context, ticketNumber string, in dto.RegisterOutsourcedMechanicDTO) (*entities.OutsourcedMechanic, error) {
	if in.AgreedPayment.IsNegative() {
		return nil, apperrors.NewInvalidInputError("согласованная сумма не может быть отрицательной")
	}
	if _, err := s.tickets.FindByNumber(ctx, nil, ticketNumber); err != nil {
		return nil, err
	}
	saved, err := s.mechanics.Register(ctx, entities.OutsourcedMechanic{
		TicketNumber:  ticketNumber,
		MechanicName:  in.MechanicName,
		Phone:         utils.NullStringFromPtr(in.Phone),
		WorkDone:      utils.NullStringFromPtr(in.WorkDone),
		AgreedPayment: in.AgreedPayment,
		WorkDate:      null.TimeFromPtr(in.WorkDate),
		Notes:         utils.NullStringFromPtr(in.Notes),
	})
	if err != nil {
		return nil, err
	}
	utils.LoggerFromCtx(ctx, s.logger).Info("Сторонний механик привлечен",
		zap.String("ticket_number", ticketNumber),
		zap.String("mechanic_name", in.MechanicName),
		zap.String("agreed_payment", in.AgreedPayment.String()),
	)
	return saved, nil
}

// RecordPayment только добавляет выплату и возвращает обновленную сводку по механику.
func (s *PaymentLedgerService) RecordPayment(ctx context.Context, ticketNumber string, in dto.RecordPaymentDTO) (*dto.MechanicLedgerDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.NewInvalidInputError("сумма выплаты должна быть больше нуля")
	}
	mechanic, err := s.mechanics.Find(ctx, ticketNumber, in.MechanicName)
	if err != nil {
		return nil, err
	}

	paymentDate := s.now()
	if in.PaymentDate != nil {
		paymentDate = *in.PaymentDate
	}
	if _, err := s.mechanics.AppendPayment(ctx, entities.PaymentInstallment{
		TicketNumber:  ticketNumber,
		MechanicName:  mechanic.MechanicName,
		Amount:        in.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: utils.NullStringFromPtr(in.PaymentMethod),
		Notes:         utils.NullStringFromPtr(in.Notes),
	}); err != nil {
		return nil, err
	}

	payments, err := s.mechanics.ListPayments(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	ledger := BuildLedger(*mechanic, payments)

	utils.LoggerFromCtx(ctx, s.logger).Info("Выплата стороннему механику записана",
		zap.String("ticket_number", ticketNumber),
		zap.String("mechanic_name", mechanic.MechanicName),
		zap.String("amount", in.Amount.String()),
		zap.String("remaining", ledger.RemainingBalance.String()),
	)
	return &ledger, nil
}

// Ledger - сводка по всем сторонним механикам заявки.
func (s *PaymentLedgerService) Ledger(ctx context.Context, ticketNumber string) ([]dto.MechanicLedgerDTO, error) {
	if _, err := s.tickets.FindByNumber(ctx, nil, ticketNumber); err != nil {
		return nil, err
	}
	mechanics, err := s.mechanics.ListByTicket(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	payments, err := s.mechanics.ListPayments(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MechanicLedgerDTO, 0, len(mechanics))
	for _, m := range mechanics {
		out = append(out, BuildLedger(m, payments))
	}
	return out, nil
}
