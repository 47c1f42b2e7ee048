package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ticket-system/internal/entities"
	apperrors "ticket-system/pkg/errors"
)

// OutsourceMechanicRepositoryInterface - хранилище договоренностей со сторонними механиками
// и журнала выплат. Выплаты только добавляются.
type OutsourceMechanicRepositoryInterface interface {
	Register(ctx context.Context, m entities.OutsourcedMechanic) (*entities.OutsourcedMechanic, error)
	Find(ctx context.Context, ticketNumber, mechanicName string) (*entities.OutsourcedMechanic, error)
	ListByTicket(ctx context.Context, ticketNumber string) ([]entities.OutsourcedMechanic, error)
	AppendPayment(ctx context.Context, p entities.PaymentInstallment) (*entities.PaymentInstallment, error)
	ListPayments(ctx context.Context, ticketNumber string) ([]entities.PaymentInstallment, error)
}

type outsourceMechanicRepository struct {
	storage *pgxpool.Pool
}

func NewOutsourceMechanicRepository(storage *pgxpool.Pool) OutsourceMechanicRepositoryInterface {
	return &outsourceMechanicRepository{storage: storage}
}

func (r *outsourceMechanicRepository) Register(ctx context.Context, m entities.OutsourcedMechanic) (*entities.OutsourcedMechanic, error) {
	query, args, err := psql.Insert(outsourcedMechanicsQuery.table).
		Columns("ticket_number", "mechanic_name", "phone", "work_done", "agreed_payment", "work_date", "notes").
		Values(m.TicketNumber, m.MechanicName, m.Phone, m.WorkDone, m.AgreedPayment, m.WorkDate, m.Notes).
		Suffix(`ON CONFLICT (ticket_number, mechanic_name) DO UPDATE SET
			phone = COALESCE(EXCLUDED.phone, outsource_mechanics.phone),
			work_done = COALESCE(EXCLUDED.work_done, outsource_mechanics.work_done),
			agreed_payment = EXCLUDED.agreed_payment,
			work_date = COALESCE(EXCLUDED.work_date, outsource_mechanics.work_date),
			notes = COALESCE(EXCLUDED.notes, outsource_mechanics.notes)
			RETURNING ` + outsourcedMechanicsQuery.fields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL стороннего механика: %w", err)
	}
	saved, err := collectOne[entities.OutsourcedMechanic](ctx, r.storage, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения стороннего механика: %w", err)
	}
	return saved, nil
}

func (r *outsourceMechanicRepository) Find(ctx context.Context, ticketNumber, mechanicName string) (*entities.OutsourcedMechanic, error) {
	query, args, err := psql.Select(outsourcedMechanicsQuery.fields).
		From(outsourcedMechanicsQuery.table).
		Where(sq.Eq{"ticket_number": ticketNumber, "mechanic_name": mechanicName}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL стороннего механика: %w", err)
	}
	m, err := collectOne[entities.OutsourcedMechanic](ctx, r.storage, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMechanicNotFound
		}
		return nil, fmt.Errorf("ошибка поиска стороннего механика: %w", err)
	}
	return m, nil
}

func (r *outsourceMechanicRepository) ListByTicket(ctx context.Context, ticketNumber string) ([]entities.OutsourcedMechanic, error) {
	return fetchChildren[entities.OutsourcedMechanic](ctx, r.storage, outsourcedMechanicsQuery, []string{ticketNumber})
}

func (r *outsourceMechanicRepository) AppendPayment(ctx context.Context, p entities.PaymentInstallment) (*entities.PaymentInstallment, error) {
	query, args, err := psql.Insert(mechanicPaymentsQuery.table).
		Columns("ticket_number", "mechanic_name", "amount", "payment_date", "payment_method", "notes").
		Values(p.TicketNumber, p.MechanicName, p.Amount, p.PaymentDate, p.PaymentMethod, p.Notes).
		Suffix("RETURNING " + mechanicPaymentsQuery.fields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL выплаты: %w", err)
	}
	saved, err := collectOne[entities.PaymentInstallment](ctx, r.storage, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи выплаты: %w", err)
	}
	return saved, nil
}

func (r *outsourceMechanicRepository) ListPayments(ctx context.Context, ticketNumber string) ([]entities.PaymentInstallment, error) {
	return fetchChildren[entities.PaymentInstallment](ctx, r.storage, mechanicPaymentsQuery, []string{ticketNumber})
}
