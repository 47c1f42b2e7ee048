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

const (
	billTable  = "bills"
	billFields = `id, bill_number, ticket_number, proforma_id, labor_cost, parts_cost, outsourced_parts_cost,
		outsourced_labor_cost, subtotal, tax_rate, tax_amount, final_total, status, created_at, updated_at`
)

type BillRepositoryInterface interface {
	Upsert(ctx context.Context, tx pgx.Tx, b entities.Bill) (*entities.Bill, error)
	FindByTicket(ctx context.Context, ticketNumber string) (*entities.Bill, error)
}

type billRepository struct {
	storage *pgxpool.Pool
}

func NewBillRepository(storage *pgxpool.Pool) BillRepositoryInterface {
	return &billRepository{storage: storage}
}

func (r *billRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

// Upsert - один счет на заявку. Номер счета при обновлении не меняется.
func (r *billRepository) Upsert(ctx context.Context, tx pgx.Tx, b entities.Bill) (*entities.Bill, error) {
	query, args, err := psql.Insert(billTable).
		Columns("bill_number", "ticket_number", "proforma_id", "labor_cost", "parts_cost", "outsourced_parts_cost",
			"outsourced_labor_cost", "subtotal", "tax_rate", "tax_amount", "final_total", "status").
		Values(b.BillNumber, b.TicketNumber, b.ProformaID, b.LaborCost, b.PartsCost, b.OutsourcedPartsCost,
			b.OutsourcedLaborCost, b.Subtotal, b.TaxRate, b.TaxAmount, b.FinalTotal, b.Status).
		Suffix(`ON CONFLICT (ticket_number) DO UPDATE SET
			proforma_id = COALESCE(EXCLUDED.proforma_id, bills.proforma_id),
			labor_cost = EXCLUDED.labor_cost,
			parts_cost = EXCLUDED.parts_cost,
			outsourced_parts_cost = EXCLUDED.outsourced_parts_cost,
			outsourced_labor_cost = EXCLUDED.outsourced_labor_cost,
			subtotal = EXCLUDED.subtotal,
			tax_rate = EXCLUDED.tax_rate,
			tax_amount = EXCLUDED.tax_amount,
			final_total = EXCLUDED.final_total,
			status = EXCLUDED.status,
			updated_at = NOW()
			RETURNING ` + billFields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL счета: %w", err)
	}
	saved, err := collectOne[entities.Bill](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("номер счета %s уже занят: %w", b.BillNumber, apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("ошибка сохранения счета по заявке %s: %w", b.TicketNumber, err)
	}
	return saved, nil
}

func (r *billRepository) FindByTicket(ctx context.Context, ticketNumber string) (*entities.Bill, error) {
	query, args, err := psql.Select(billFields).From(billTable).Where(sq.Eq{"ticket_number": ticketNumber}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL счета: %w", err)
	}
	b, err := collectOne[entities.Bill](ctx, r.storage, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска счета по заявке %s: %w", ticketNumber, err)
	}
	return b, nil
}
