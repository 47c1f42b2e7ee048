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
	toolTable  = "tools"
	toolFields = "id, name, category, total_quantity, available_quantity, updated_at"
)

type ToolRepositoryInterface interface {
	FindByID(ctx context.Context, tx pgx.Tx, id int64) (*entities.Tool, error)
	Reserve(ctx context.Context, tx pgx.Tx, toolID int64, quantity int) (*entities.Tool, error)
	Release(ctx context.Context, tx pgx.Tx, toolID int64, quantity int) (*entities.Tool, error)
	CreateAssignment(ctx context.Context, tx pgx.Tx, a entities.ToolAssignment) (*entities.ToolAssignment, error)
	FindAssignmentForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*entities.ToolAssignment, error)
	RegisterReturn(ctx context.Context, tx pgx.Tx, id int64, quantity int) (*entities.ToolAssignment, error)
}

type toolRepository struct {
	storage *pgxpool.Pool
}

func NewToolRepository(storage *pgxpool.Pool) ToolRepositoryInterface {
	return &toolRepository{storage: storage}
}

func (r *toolRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *toolRepository) FindByID(ctx context.Context, tx pgx.Tx, id int64) (*entities.Tool, error) {
	query, args, err := psql.Select(toolFields).From(toolTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL инструмента: %w", err)
	}
	t, err := collectOne[entities.Tool](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrToolNotFound
		}
		return nil, fmt.Errorf("ошибка поиска инструмента %d: %w", id, err)
	}
	return t, nil
}

// Reserve - проверка остатка и списание одним условным UPDATE.
// Если строка не обновилась, различаем отсутствие инструмента и нехватку остатка.
func (r *toolRepository) Reserve(ctx context.Context, tx pgx.Tx, toolID int64, quantity int) (*entities.Tool, error) {
	query, args, err := psql.Update(toolTable).
		Set("available_quantity", sq.Expr("available_quantity - ?", quantity)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": toolID}).
		Where(sq.GtOrEq{"available_quantity": quantity}).
		Suffix("RETURNING " + toolFields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL выдачи инструмента: %w", err)
	}

	q := r.getQuerier(tx)
	t, err := collectOne[entities.Tool](ctx, q, query, args...)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ошибка списания инструмента %d: %w", toolID, err)
	}

	existing, findErr := r.FindByID(ctx, tx, toolID)
	if findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("%w: запрошено %d, доступно %d", apperrors.ErrInsufficientToolQuantity, quantity, existing.AvailableQuantity)
}

// Release возвращает единицы в пул; CHECK в таблице не даст превысить total_quantity.
func (r *toolRepository) Release(ctx context.Context, tx pgx.Tx, toolID int64, quantity int) (*entities.Tool, error) {
	query, args, err := psql.Update(toolTable).
		Set("available_quantity", sq.Expr("available_quantity + ?", quantity)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": toolID}).
		Suffix("RETURNING " + toolFields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL возврата инструмента: %w", err)
	}
	t, err := collectOne[entities.Tool](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrToolNotFound
		}
		return nil, fmt.Errorf("ошибка возврата инструмента %d: %w", toolID, err)
	}
	return t, nil
}

func (r *toolRepository) CreateAssignment(ctx context.Context, tx pgx.Tx, a entities.ToolAssignment) (*entities.ToolAssignment, error) {
	query, args, err := psql.Insert(toolAssignmentsQuery.table).
		Columns("tool_id", "ticket_number", "tool_name", "assigned_quantity", "returned_quantity", "assigned_by", "status").
		Values(a.ToolID, a.TicketNumber, a.ToolName, a.AssignedQuantity, 0, a.AssignedBy, entities.ToolAssignmentInUse).
		Suffix("RETURNING " + toolAssignmentsQuery.fields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL выдачи: %w", err)
	}
	created, err := collectOne[entities.ToolAssignment](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи выдачи инструмента: %w", err)
	}
	return created, nil
}

func (r *toolRepository) FindAssignmentForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*entities.ToolAssignment, error) {
	query, args, err := psql.Select(toolAssignmentsQuery.fields).
		From(toolAssignmentsQuery.table).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL выдачи: %w", err)
	}
	a, err := collectOne[entities.ToolAssignment](ctx, tx, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrToolAssignmentNotFound
		}
		return nil, fmt.Errorf("ошибка поиска выдачи %d: %w", id, err)
	}
	return a, nil
}

// RegisterReturn увеличивает returned_quantity, не позволяя вернуть больше выданного.
// При полном возврате выдача закрывается.
func (r *toolRepository) RegisterReturn(ctx context.Context, tx pgx.Tx, id int64, quantity int) (*entities.ToolAssignment, error) {
	query, args, err := psql.Update(toolAssignmentsQuery.table).
		Set("returned_quantity", sq.Expr("returned_quantity + ?", quantity)).
		Set("status", sq.Expr("CASE WHEN returned_quantity + ? >= assigned_quantity THEN ? ELSE status END",
			quantity, entities.ToolAssignmentReturned)).
		Set("returned_at", sq.Expr("CASE WHEN returned_quantity + ? >= assigned_quantity THEN NOW() ELSE returned_at END", quantity)).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr("returned_quantity + ? <= assigned_quantity", quantity)).
		Suffix("RETURNING " + toolAssignmentsQuery.fields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL возврата: %w", err)
	}
	a, err := collectOne[entities.ToolAssignment](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvalidReturnQuantity
		}
		return nil, fmt.Errorf("ошибка возврата по выдаче %d: %w", id, err)
	}
	return a, nil
}
