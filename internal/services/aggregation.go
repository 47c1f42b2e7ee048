package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/repositories"
	"ticket-system/pkg/utils"
)

// Projection определяет, какие виды дочерних записей загружаются.
type Projection string

const (
	ProjectionFull    Projection = "full"
	ProjectionSummary Projection = "summary"
)

// FailureMode - политика обработки ошибок дочерних выборок. Выбирается на уровне эндпоинта.
type FailureMode int

const (
	// FailSoft: упавшая выборка дает пустую коллекцию и предупреждение в логе.
	FailSoft FailureMode = iota
	// FailHard: любая ошибка прерывает весь ответ.
	FailHard
)

type AggregateOptions struct {
	Projection Projection
	Mode       FailureMode
}

type ChildKind string

const (
	KindDisassembledParts   ChildKind = "disassembled_parts"
	KindProgressLogs        ChildKind = "progress_logs"
	KindInspections         ChildKind = "inspections"
	KindOutsourcedMechanics ChildKind = "outsourced_mechanics"
	KindMechanicPayments    ChildKind = "mechanic_payments"
	KindOutsourceStock      ChildKind = "outsource_stock"
	KindOrderedParts        ChildKind = "ordered_parts"
	KindToolAssignments     ChildKind = "tool_assignments"
	KindMechanicAssignments ChildKind = "mechanic_assignments"
	KindInsurance           ChildKind = "insurance"
)

var fullKinds = []ChildKind{
	KindDisassembledParts, KindProgressLogs, KindInspections, KindOutsourcedMechanics, KindMechanicPayments,
	KindOutsourceStock, KindOrderedParts, KindToolAssignments, KindMechanicAssignments, KindInsurance,
}

var summaryKinds = []ChildKind{KindProgressLogs, KindInspections, KindMechanicAssignments, KindInsurance}

// Kinds - виды записей, загружаемые для проекции. Неизвестная проекция считается полной.
func (p Projection) Kinds() []ChildKind {
	if p == ProjectionSummary {
		return summaryKinds
	}
	return fullKinds
}

// ChildFetchError - ошибка выборки одного вида записей в режиме FailHard.
type ChildFetchError struct {
	Kind ChildKind
	Err  error
}

func (e *ChildFetchError) Error() string {
	return fmt.Sprintf("не удалось загрузить %s: %v", e.Kind, e.Err)
}

func (e *ChildFetchError) Unwrap() error { return e.Err }

type AggregationServiceInterface interface {
	Aggregate(ctx context.Context, tickets []entities.Ticket, opts AggregateOptions) ([]dto.AggregatedTicketDTO, error)
}

type AggregationService struct {
	children     repositories.TicketChildRepositoryInterface
	fetchTimeout time.Duration
	logger       *zap.Logger
}

func NewAggregationService(
	children repositories.TicketChildRepositoryInterface,
	fetchTimeout time.Duration,
	logger *zap.Logger,
) AggregationServiceInterface {
	return &AggregationService{children: children, fetchTimeout: fetchTimeout, logger: logger}
}

// childSet - сгруппированные по номеру заявки дочерние записи.
// Каждое поле заполняет ровно одна горутина, чтение только после барьера.
type childSet struct {
	disassembledParts   map[string][]entities.DisassembledPart
	progressLogs        map[string][]entities.ProgressLog
	inspections         map[string][]entities.Inspection
	outsourcedMechanics map[string][]entities.OutsourcedMechanic
	mechanicPayments    map[string][]entities.PaymentInstallment
	outsourceStock      map[string][]entities.OutsourceStockRequest
	orderedParts        map[string][]entities.OrderedPart
	toolAssignments     map[string][]entities.ToolAssignment
	mechanicAssignments map[string][]entities.MechanicAssignment
	insurance           map[string][]entities.InsuranceRecord
}

// groupBy раскладывает записи по ключу, сохраняя исходный порядок внутри группы.
func groupBy[T any](items []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, it := range items {
		k := key(it)
		out[k] = append(out[k], it)
	}
	return out
}

func fetchInto[T any](fetch func(context.Context, []string) ([]T, error), key func(T) string, dst *map[string][]T) func(context.Context, []string) error {
	return func(ctx context.Context, numbers []string) error {
		items, err := fetch(ctx, numbers)
		if err != nil {
			return err
		}
		*dst = groupBy(items, key)
		return nil
	}
}

func (s *AggregationService) fetchers(set *childSet) map[ChildKind]func(context.Context, []string) error {
	return map[ChildKind]func(context.Context, []string) error{
		KindDisassembledParts: fetchInto(s.children.FetchDisassembledParts,
			func(x entities.DisassembledPart) string { return x.TicketNumber }, &set.disassembledParts),
		KindProgressLogs: fetchInto(s.children.FetchProgressLogs,
			func(x entities.ProgressLog) string { return x.TicketNumber }, &set.progressLogs),
		KindInspections: fetchInto(s.children.FetchInspections,
			func(x entities.Inspection) string { return x.TicketNumber }, &set.inspections),
		KindOutsourcedMechanics: fetchInto(s.children.FetchOutsourcedMechanics,
			func(x entities.OutsourcedMechanic) string { return x.TicketNumber }, &set.outsourcedMechanics),
		KindMechanicPayments: fetchInto(s.children.FetchMechanicPayments,
			func(x entities.PaymentInstallment) string { return x.TicketNumber }, &set.mechanicPayments),
		KindOutsourceStock: fetchInto(s.children.FetchOutsourceStock,
			func(x entities.OutsourceStockRequest) string { return x.TicketNumber }, &set.outsourceStock),
		KindOrderedParts: fetchInto(s.children.FetchOrderedParts,
			func(x entities.OrderedPart) string { return x.TicketNumber }, &set.orderedParts),
		KindToolAssignments: fetchInto(s.children.FetchToolAssignments,
			func(x entities.ToolAssignment) string { return x.TicketNumber }, &set.toolAssignments),
		KindMechanicAssignments: fetchInto(s.children.FetchMechanicAssignments,
			func(x entities.MechanicAssignment) string { return x.TicketNumber }, &set.mechanicAssignments),
		KindInsurance: fetchInto(s.children.FetchInsurance,
			func(x entities.InsuranceRecord) string { return x.TicketNumber }, &set.insurance),
	}
}

// Aggregate собирает заявки вместе с дочерними записями: один запрос на вид записей
// для всего набора заявок, запросы выполняются параллельно.
func (s *AggregationService) Aggregate(ctx context.Context, tickets []entities.Ticket, opts AggregateOptions) ([]dto.AggregatedTicketDTO, error) {
	if opts.Projection == "" {
		opts.Projection = ProjectionFull
	}
	if len(tickets) == 0 {
		return []dto.AggregatedTicketDTO{}, nil
	}

	numbers := ticketNumbers(tickets)
	set := &childSet{}
	fetchers := s.fetchers(set)
	kinds := opts.Projection.Kinds()

	var err error
	if opts.Mode == FailHard {
		err = s.runHard(ctx, kinds, fetchers, numbers)
	} else {
		s.runSoft(ctx, kinds, fetchers, numbers)
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.AggregatedTicketDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, assemble(t, set, opts.Projection))
	}
	return out, nil
}

func (s *AggregationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.fetchTimeout > 0 {
		return context.WithTimeout(ctx, s.fetchTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *AggregationService) runSoft(ctx context.Context, kinds []ChildKind, fetchers map[ChildKind]func(context.Context, []string) error, numbers []string) {
	logger := utils.LoggerFromCtx(ctx, s.logger)
	var wg sync.WaitGroup
	for _, kind := range kinds {
		fetch := fetchers[kind]
		wg.Add(1)
		go func(kind ChildKind) {
			defer wg.Done()
			fetchCtx, cancel := s.withTimeout(ctx)
			defer cancel()
			if err := fetch(fetchCtx, numbers); err != nil {
				logger.Warn("Дочерние записи не загружены, отдается пустая коллекция",
					zap.String("kind", string(kind)),
					zap.Int("tickets", len(numbers)),
					zap.Error(err),
				)
			}
		}(kind)
	}
	wg.Wait()
}

func (s *AggregationService) runHard(ctx context.Context, kinds []ChildKind, fetchers map[ChildKind]func(context.Context, []string) error, numbers []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		fetch := fetchers[kind]
		kind := kind
		g.Go(func() error {
			fetchCtx, cancel := s.withTimeout(gctx)
			defer cancel()
			if err := fetch(fetchCtx, numbers); err != nil {
				return &ChildFetchError{Kind: kind, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

func ticketNumbers(tickets []entities.Ticket) []string {
	seen := make(map[string]struct{}, len(tickets))
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		if _, ok := seen[t.TicketNumber]; ok {
			continue
		}
		seen[t.TicketNumber] = struct{}{}
		out = append(out, t.TicketNumber)
	}
	return out
}

// orEmpty: отсутствующая группа превращается в пустой срез, а не в null.
func orEmpty[T any](m map[string][]T, key string) []T {
	if items, ok := m[key]; ok {
		return items
	}
	return []T{}
}

func assemble(t entities.Ticket, set *childSet, projection Projection) dto.AggregatedTicketDTO {
	n := t.TicketNumber

	inspections := orEmpty(set.inspections, n)
	projected := make([]dto.InspectionDTO, 0, len(inspections))
	for _, i := range inspections {
		projected = append(projected, ProjectInspection(i))
	}

	var insurance *entities.InsuranceRecord
	if recs := set.insurance[n]; len(recs) > 0 {
		rec := recs[0]
		insurance = &rec
	}

	return dto.AggregatedTicketDTO{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		CustomerType: t.CustomerType,
		CustomerID:   t.CustomerID,
		CustomerName: t.CustomerName,
		VehicleID:    utils.NullInt64Ptr(t.VehicleID),
		VehicleInfo:  t.VehicleInfo,
		LicensePlate: t.LicensePlate,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		Type:         t.Type,
		Status:       t.Status,
		ProformaID:   utils.NullInt64Ptr(t.ProformaID),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		CompletedAt:  t.CompletedAt.Ptr(),
		Projection:   string(projection),

		DisassembledParts:   orEmpty(set.disassembledParts, n),
		ProgressLogs:        orEmpty(set.progressLogs, n),
		Inspections:         projected,
		OutsourcedMechanics: orEmpty(set.outsourcedMechanics, n),
		MechanicPayments:    orEmpty(set.mechanicPayments, n),
		OutsourceStock:      orEmpty(set.outsourceStock, n),
		OrderedParts:        orEmpty(set.orderedParts, n),
		ToolAssignments:     orEmpty(set.toolAssignments, n),
		MechanicAssignments: orEmpty(set.mechanicAssignments, n),
		Insurance:           insurance,
	}
}
