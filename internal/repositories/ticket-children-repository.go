package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ticket-system/internal/entities"
)

// childQuery описывает выборку одного вида дочерних записей.
// Порядок внутри заявки задает собственный ключ сортировки таблицы (новые сверху).
type childQuery struct {
	table   string
	fields  string
	orderBy string
}

var (
	disassembledPartsQuery = childQuery{
		table:   "disassembled_parts",
		fields:  "id, ticket_number, part_name, condition, status, notes, logged_at",
		orderBy: "logged_at DESC",
	}
	progressLogsQuery = childQuery{
		table:   "progress_logs",
		fields:  "id, ticket_number, status, description, created_by, created_at",
		orderBy: "created_at DESC",
	}
	inspectionsQuery = childQuery{
		table: "inspections",
		fields: `id, ticket_number, main_issue_resolved, reassembly_verified, general_condition, notes,
			inspection_status, oil_level, oil_condition, brake_fluid, coolant, power_steering_fluid,
			tire_pressure, tire_tread, lights, battery, wipers, inspection_date`,
		orderBy: "inspection_date DESC",
	}
	outsourcedMechanicsQuery = childQuery{
		table:   "outsource_mechanics",
		fields:  "id, ticket_number, mechanic_name, phone, work_done, agreed_payment, work_date, notes, created_at",
		orderBy: "created_at DESC",
	}
	mechanicPaymentsQuery = childQuery{
		table:   "outsource_mechanic_payments",
		fields:  "id, ticket_number, mechanic_name, amount, payment_date, payment_method, notes, created_at",
		orderBy: "payment_date DESC, created_at DESC",
	}
	outsourceStockQuery = childQuery{
		table:   "outsource_stock",
		fields:  "id, ticket_number, name, category, sku, price, quantity, source_shop, status, requested_at, received_at",
		orderBy: "requested_at DESC",
	}
	orderedPartsQuery = childQuery{
		table:   "ordered_parts",
		fields:  "id, ticket_number, item_id, name, category, sku, price, quantity, status, notes, ordered_at",
		orderBy: "ordered_at DESC",
	}
	toolAssignmentsQuery = childQuery{
		table: "tool_assignments",
		fields: `id, tool_id, ticket_number, tool_name, assigned_quantity, returned_quantity, assigned_by,
			status, assigned_at, returned_at`,
		orderBy: "assigned_at DESC",
	}
	mechanicAssignmentsQuery = childQuery{
		table:   "mechanic_assignments",
		fields:  "id, ticket_number, mechanic_id, mechanic_name, status, assigned_at",
		orderBy: "assigned_at DESC",
	}
	insuranceQuery = childQuery{
		table: "insurance",
		fields: `id, ticket_number, customer_type, customer_id, owner_name, phone, email, vehicle_info,
			license_plate, insurance_company, policy_number, accident_date, accident_location, description,
			status, created_at, updated_at`,
		orderBy: "created_at DESC",
	}
)

// fetchChildren - один запрос на вид записей по всему набору номеров заявок.
func fetchChildren[T any](ctx context.Context, q Querier, cq childQuery, ticketNumbers []string) ([]T, error) {
	if len(ticketNumbers) == 0 {
		return []T{}, nil
	}
	builder := psql.Select(cq.fields).
		From(cq.table).
		Where(sq.Eq{"ticket_number": ticketNumbers}).
		OrderBy(cq.orderBy, "id DESC")

	items, err := collect[T](ctx, q, builder)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки %s: %w", cq.table, err)
	}
	return items, nil
}

type TicketChildRepositoryInterface interface {
	FetchDisassembledParts(ctx context.Context, ticketNumbers []string) ([]entities.DisassembledPart, error)
	FetchProgressLogs(ctx context.Context, ticketNumbers []string) ([]entities.ProgressLog, error)
	FetchInspections(ctx context.Context, ticketNumbers []string) ([]entities.Inspection, error)
	FetchOutsourcedMechanics(ctx context.Context, ticketNumbers []string) ([]entities.OutsourcedMechanic, error)
	FetchMechanicPayments(ctx context.Context, ticketNumbers []string) ([]entities.PaymentInstallment, error)
	FetchOutsourceStock(ctx context.Context, ticketNumbers []string) ([]entities.OutsourceStockRequest, error)
	FetchOrderedParts(ctx context.Context, ticketNumbers []string) ([]entities.OrderedPart, error)
	FetchToolAssignments(ctx context.Context, ticketNumbers []string) ([]entities.ToolAssignment, error)
	FetchMechanicAssignments(ctx context.Context, ticketNumbers []string) ([]entities.MechanicAssignment, error)
	FetchInsurance(ctx context.Context, ticketNumbers []string) ([]entities.InsuranceRecord, error)

	CreateMechanicAssignment(ctx context.Context, tx pgx.Tx, a entities.MechanicAssignment) (*entities.MechanicAssignment, error)
	CreateProgressLog(ctx context.Context, tx pgx.Tx, l entities.ProgressLog) (*entities.ProgressLog, error)
	CreateInspection(ctx context.Context, tx pgx.Tx, i entities.Inspection) (*entities.Inspection, error)
}

type ticketChildRepository struct {
	storage *pgxpool.Pool
}

func NewTicketChildRepository(storage *pgxpool.Pool) TicketChildRepositoryInterface {
	return &ticketChildRepository{storage: storage}
}

func (r *ticketChildRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *ticketChildRepository) FetchDisassembledParts(ctx context.Context, ticketNumbers []string) ([]entities.DisassembledPart, error) {
	return fetchChildren[entities.DisassembledPart](ctx, r.storage, disassembledPartsQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchProgressLogs(ctx context.Context, ticketNumbers []string) ([]entities.ProgressLog, error) {
	return fetchChildren[entities.ProgressLog](ctx, r.storage, progressLogsQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchInspections(ctx context.Context, ticketNumbers []string) ([]entities.Inspection, error) {
	return fetchChildren[entities.Inspection](ctx, r.storage, inspectionsQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchOutsourcedMechanics(ctx context.Context, ticketNumbers []string) ([]entities.OutsourcedMechanic, error) {
	return fetchChildren[entities.OutsourcedMechanic](ctx, r.storage, outsourcedMechanicsQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchMechanicPayments(ctx context.Context, ticketNumbers []string) ([]entities.PaymentInstallment, error) {
	return fetchChildren[entities.PaymentInstallment](ctx, r.storage, mechanicPaymentsQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchOutsourceStock(ctx context.Context, ticketNumbers []string) ([]entities.OutsourceStockRequest, error) {
	return fetchChildren[entities.OutsourceStockRequest](ctx, r.storage, outsourceStockQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchOrderedParts(ctx context.Context, ticketNumbers []string) ([]entities.OrderedPart, error) {
	return fetchChildren[entities.OrderedPart](ctx, r.storage, orderedPartsQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchToolAssignments(ctx context.Context, ticketNumbers []string) ([]entities.ToolAssignment, error) {
	return fetchChildren[entities.ToolAssignment](ctx, r.storage, toolAssignmentsQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchMechanicAssignments(ctx context.Context, ticketNumbers []string) ([]entities.MechanicAssignment, error) {
	return fetchChildren[entities.MechanicAssignment](ctx, r.storage, mechanicAssignmentsQuery, ticketNumbers)
}

func (r *ticketChildRepository) FetchInsurance(ctx context.Context, ticketNumbers []string) ([]entities.InsuranceRecord, error) {
	return fetchChildren[entities.InsuranceRecord](ctx, r.storage, insuranceQuery, ticketNumbers)
}

func (r *ticketChildRepository) CreateMechanicAssignment(ctx context.Context, tx pgx.Tx, a entities.MechanicAssignment) (*entities.MechanicAssignment, error) {
	query, args, err := psql.Insert(mechanicAssignmentsQuery.table).
		Columns("ticket_number", "mechanic_id", "mechanic_name", "status").
		Values(a.TicketNumber, a.MechanicID, a.MechanicName, a.Status).
		Suffix("RETURNING " + mechanicAssignmentsQuery.fields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL назначения механика: %w", err)
	}
	created, err := collectOne[entities.MechanicAssignment](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка назначения механика: %w", err)
	}
	return created, nil
}

func (r *ticketChildRepository) CreateProgressLog(ctx context.Context, tx pgx.Tx, l entities.ProgressLog) (*entities.ProgressLog, error) {
	query, args, err := psql.Insert(progressLogsQuery.table).
		Columns("ticket_number", "status", "description", "created_by").
		Values(l.TicketNumber, l.Status, l.Description, l.CreatedBy).
		Suffix("RETURNING " + progressLogsQuery.fields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL записи журнала: %w", err)
	}
	created, err := collectOne[entities.ProgressLog](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи журнала работ: %w", err)
	}
	return created, nil
}

func (r *ticketChildRepository) CreateInspection(ctx context.Context, tx pgx.Tx, i entities.Inspection) (*entities.Inspection, error) {
	query, args, err := psql.Insert(inspectionsQuery.table).
		Columns("ticket_number", "main_issue_resolved", "reassembly_verified", "general_condition", "notes",
			"inspection_status", "oil_level", "oil_condition", "brake_fluid", "coolant", "power_steering_fluid",
			"tire_pressure", "tire_tread", "lights", "battery", "wipers").
		Values(i.TicketNumber, i.MainIssueResolved, i.ReassemblyVerified, i.GeneralCondition, i.Notes,
			i.InspectionStatus, i.OilLevel, i.OilCondition, i.BrakeFluid, i.Coolant, i.PowerSteeringFluid,
			i.TirePressure, i.TireTread, i.Lights, i.Battery, i.Wipers).
		Suffix("RETURNING " + inspectionsQuery.fields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL проверки: %w", err)
	}
	created, err := collectOne[entities.Inspection](ctx, r.getQuerier(tx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи проверки: %w", err)
	}
	return created, nil
}
