package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ticket-system/internal/entities"
	db "ticket-system/internal/infrastructure/bd"
	"ticket-system/internal/workflow"
	"ticket-system/pkg/constants"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/types"
)

const (
	ticketTable  = "service_tickets"
	ticketFields = `id, ticket_number, customer_type, customer_id, customer_name, vehicle_id, vehicle_info,
		license_plate, title, description, priority, type, status, proforma_id, created_at, updated_at, completed_at`
)

// блокировка держится до COMMIT/ROLLBACK транзакции
const ticketNumberLockSQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

// allowedTicketFields - белый список полей для filter[..] и sort[..]
var allowedTicketFields = map[string]string{
	"ticket_number": "ticket_number",
	"customer_type": "customer_type",
	"customer_id":   "customer_id",
	"license_plate": "license_plate",
	"priority":      "priority",
	"type":          "type",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

type TicketRepositoryInterface interface {
	List(ctx context.Context, view workflow.View, filter types.Filter) ([]entities.Ticket, uint64, error)
	FindByNumber(ctx context.Context, tx pgx.Tx, ticketNumber string) (*entities.Ticket, error)
	FindByNumberForUpdate(ctx context.Context, tx pgx.Tx, ticketNumber string) (*entities.Ticket, error)
	NextTicketNumber(ctx context.Context, tx pgx.Tx, prefix string, day time.Time) (string, error)
	Create(ctx context.Context, tx pgx.Tx, t entities.Ticket) (*entities.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, ticketNumber string, status workflow.Status, completedAt *time.Time) (*entities.Ticket, error)
}

type ticketRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTicketRepository(storage *pgxpool.Pool, logger *zap.Logger) TicketRepositoryInterface {
	return &ticketRepository{storage: storage, logger: logger}
}

func (r *ticketRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

// normalizeTicket приводит сохраненные статус и тип к каноническому виду.
func normalizeTicket(t *entities.Ticket) {
	t.Status = workflow.Normalize(string(t.Status))
	t.Type = workflow.NormalizeType(string(t.Type))
}

// viewCondition - условие на статус для представления. Список сырых ключей
// выводится из предиката представления, поэтому старые формулировки статусов тоже попадают.
func viewCondition(view workflow.View) sq.Sqlizer {
	if view.Unfiltered() {
		return nil
	}
	return sq.Eq{fmt.Sprintf(workflow.KeySQL, "status"): workflow.RawKeys(view.Statuses())}
}

func searchCondition(search string) sq.Sqlizer {
	if search == "" {
		return nil
	}
	pattern := "%" + search + "%"
	return sq.Or{
		sq.ILike{"ticket_number": pattern},
		sq.ILike{"customer_name": pattern},
		sq.ILike{"license_plate": pattern},
		sq.ILike{"title": pattern},
	}
}

func (r *ticketRepository) List(ctx context.Context, view workflow.View, filter types.Filter) ([]entities.Ticket, uint64, error) {
	countBuilder := psql.Select("COUNT(*)").From(ticketTable)
	listBuilder := psql.Select(ticketFields).From(ticketTable)

	for _, cond := range []sq.Sqlizer{viewCondition(view), searchCondition(filter.Search)} {
		if cond != nil {
			countBuilder = countBuilder.Where(cond)
			listBuilder = listBuilder.Where(cond)
		}
	}
	countBuilder = db.ApplyFilters(countBuilder, filter, allowedTicketFields)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL подсчета заявок: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заявок: %w", err)
	}
	if total == 0 {
		return []entities.Ticket{}, 0, nil
	}

	listBuilder = db.ApplyListParams(listBuilder, filter, allowedTicketFields)
	// сортировка по умолчанию и стабильный порядок при равных значениях
	if len(filter.Sort) == 0 {
		listBuilder = listBuilder.OrderBy("created_at DESC")
	}
	listBuilder = listBuilder.OrderBy("id DESC")

	tickets, err := collect[entities.Ticket](ctx, r.storage, listBuilder)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	for i := range tickets {
		normalizeTicket(&tickets[i])
	}
	return tickets, total, nil
}

func (r *ticketRepository) findOne(ctx context.Context, q Querier, ticketNumber string, forUpdate bool) (*entities.Ticket, error) {
	builder := psql.Select(ticketFields).From(ticketTable).Where(sq.Eq{"ticket_number": ticketNumber})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL поиска заявки: %w", err)
	}
	t, err := collectOne[entities.Ticket](ctx, q, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("ошибка поиска заявки %s: %w", ticketNumber, err)
	}
	normalizeTicket(t)
	return t, nil
}

func (r *ticketRepository) FindByNumber(ctx context.Context, tx pgx.Tx, ticketNumber string) (*entities.Ticket, error) {
	return r.findOne(ctx, r.getQuerier(tx), ticketNumber, false)
}

// FindByNumberForUpdate блокирует строку заявки до конца транзакции.
func (r *ticketRepository) FindByNumberForUpdate(ctx context.Context, tx pgx.Tx, ticketNumber string) (*entities.Ticket, error) {
	return r.findOne(ctx, tx, ticketNumber, true)
}

// NextTicketNumber возвращает следующий номер за день: PREFIX-YYYYMMDD-NNNN.
// Выдача номеров за один день сериализуется advisory-блокировкой до конца транзакции,
// поэтому параллельные создатели получают номера по очереди. Вызывать внутри транзакции,
// в которой затем вставляется заявка.
func (r *ticketRepository) NextTicketNumber(ctx context.Context, tx pgx.Tx, prefix string, day time.Time) (string, error) {
	dayPrefix := fmt.Sprintf("%s-%s-", prefix, day.Format(constants.TicketNumberDateLayout))

	if _, err := r.getQuerier(tx).Exec(ctx, ticketNumberLockSQL, dayPrefix); err != nil {
		return "", fmt.Errorf("ошибка блокировки выдачи номера заявки: %w", err)
	}

	query, args, err := psql.Select("ticket_number").
		From(ticketTable).
		Where(sq.Like{"ticket_number": dayPrefix + "%"}).
		OrderBy("length(ticket_number) DESC", "ticket_number DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("ошибка сборки SQL номера заявки: %w", err)
	}

	var last string
	err = r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&last)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("ошибка получения последнего номера заявки: %w", err)
	}

	seq := 0
	if last != "" {
		if n, convErr := strconv.Atoi(strings.TrimPrefix(last, dayPrefix)); convErr == nil {
			seq = n
		} else {
			r.logger.Warn("Нестандартный номер заявки, отсчет начинается заново", zap.String("ticket_number", last))
		}
	}
	return fmt.Sprintf(constants.TicketNumberFormat, prefix, day.Format(constants.TicketNumberDateLayout), seq+1), nil
}

func (r *ticketRepository) Create(ctx context.Context, tx pgx.Tx, t entities.Ticket) (*entities.Ticket, error) {
	query, args, err := psql.Insert(ticketTable).
		Columns("ticket_number", "customer_type", "customer_id", "customer_name", "vehicle_id", "vehicle_info",
			"license_plate", "title", "description", "priority", "type", "status", "proforma_id", "created_at", "updated_at").
		Values(t.TicketNumber, t.CustomerType, t.CustomerID, t.CustomerName, t.VehicleID, t.VehicleInfo,
			t.LicensePlate, t.Title, t.Description, t.Priority, string(t.Type), string(t.Status), t.ProformaID,
			sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING " + ticketFields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL создания заявки: %w", err)
	}

	created, err := collectOne[entities.Ticket](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("номер заявки %s уже занят: %w", t.TicketNumber, apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	normalizeTicket(created)
	return created, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, ticketNumber string, status workflow.Status, completedAt *time.Time) (*entities.Ticket, error) {
	builder := psql.Update(ticketTable).
		Set("status", string(status)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"ticket_number": ticketNumber}).
		Suffix("RETURNING " + ticketFields)
	if completedAt != nil {
		builder = builder.Set("completed_at", *completedAt)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL смены статуса: %w", err)
	}

	updated, err := collectOne[entities.Ticket](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("ошибка смены статуса заявки %s: %w", ticketNumber, err)
	}
	normalizeTicket(updated)
	return updated, nil
}
