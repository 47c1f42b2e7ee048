package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/events"
	"ticket-system/internal/repositories"
	"ticket-system/internal/workflow"
	"ticket-system/pkg/config"
	"ticket-system/pkg/constants"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/eventbus"
	"ticket-system/pkg/imageurl"
	"ticket-system/pkg/types"
	"ticket-system/pkg/utils"
)

// Шаги побочных эффектов создания заявки
const (
	StepInsuranceRecord = "insurance_record"
	StepCustomerProfile = "customer_profile"
	StepBillSnapshot    = "bill_snapshot"
)

// EventPublisher - то, что сервису нужно от шины событий.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// CreationWarning - не выполненный побочный шаг. Заявка при этом уже сохранена.
type CreationWarning struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

func (w CreationWarning) String() string {
	return w.Step + ": " + w.Message
}

type TicketServiceInterface interface {
	CreateTicket(ctx context.Context, in dto.CreateTicketDTO) (*entities.Ticket, []CreationWarning, error)
	ListTickets(ctx context.Context, viewName string, filter types.Filter) ([]dto.AggregatedTicketDTO, uint64, error)
	GetTicket(ctx context.Context, ticketNumber string) (*dto.AggregatedTicketDTO, error)
	ExportTickets(ctx context.Context, viewName string, filter types.Filter) ([]dto.AggregatedTicketDTO, error)
	TransitionStatus(ctx context.Context, ticketNumber string, in dto.TransitionTicketDTO) (*entities.Ticket, error)
	AssignMechanic(ctx context.Context, ticketNumber string, in dto.AssignMechanicDTO) (*dto.MechanicAssignmentResultDTO, error)
	AddProgressLog(ctx context.Context, ticketNumber string, in dto.CreateProgressLogDTO) (*entities.ProgressLog, error)
	RecordInspection(ctx context.Context, ticketNumber string, in dto.CreateInspectionDTO) (*dto.InspectionResultDTO, error)
}

// TicketRepositories - хранилища, с которыми работает TicketService.
type TicketRepositories struct {
	Tickets   repositories.TicketRepositoryInterface
	Children  repositories.TicketChildRepositoryInterface
	Customers repositories.CustomerRepositoryInterface
	Vehicles  repositories.VehicleRepositoryInterface
	Insurance repositories.InsuranceRepositoryInterface
	Proformas repositories.ProformaRepositoryInterface
	Bills     repositories.BillRepositoryInterface
	Cache     repositories.CacheRepositoryInterface
}

type TicketService struct {
	txManager   repositories.TxManagerInterface
	repos       TicketRepositories
	aggregation AggregationServiceInterface
	images      imageurl.ResolverInterface
	publisher   EventPublisher
	machine     *workflow.Machine
	cache       *listCache
	cfg         config.TicketsConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewTicketService(
	txManager repositories.TxManagerInterface,
	repos TicketRepositories,
	aggregation AggregationServiceInterface,
	images imageurl.ResolverInterface,
	publisher EventPublisher,
	cfg config.TicketsConfig,
	listTTL time.Duration,
	logger *zap.Logger,
) *TicketService {
	if cfg.MaxNumberRetries <= 0 {
		cfg.MaxNumberRetries = 1
	}
	return &TicketService{
		txManager:   txManager,
		repos:       repos,
		aggregation: aggregation,
		images:      images,
		publisher:   publisher,
		machine:     workflow.Default,
		cache:       newListCache(repos.Cache, listTTL, logger),
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// missingRequiredFields проверяет обязательные поля и возвращает все пропущенные сразу.
func missingRequiredFields(in dto.CreateTicketDTO) []string {
	required := []struct {
		name  string
		value string
	}{
		{"customer_type", in.CustomerType},
		{"customer_id", in.CustomerID},
		{"customer_name", in.CustomerName},
		{"vehicle_info", in.VehicleInfo},
		{"license_plate", in.LicensePlate},
		{"title", in.Title},
		{"description", in.Description},
		{"priority", in.Priority},
		{"type", in.Type},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// CreateTicket создает заявку в статусе pending. Побочные шаги для страховых заявок
// выполняются после коммита, их ошибки возвращаются предупреждениями.
func (s *TicketService) CreateTicket(ctx context.Context, in dto.CreateTicketDTO) (*entities.Ticket, []CreationWarning, error) {
	logger := utils.LoggerFromCtx(ctx, s.logger)

	if missing := missingRequiredFields(in); len(missing) > 0 {
		return nil, nil, apperrors.NewValidationError(missing...)
	}

	var proforma *entities.Proforma
	if in.ProformaID != nil {
		p, err := s.repos.Proformas.FindByID(ctx, nil, *in.ProformaID)
		if err != nil {
			return nil, nil, err
		}
		if !p.IsAccepted() {
			return nil, nil, fmt.Errorf("%w: %s в статусе %q", apperrors.ErrInvalidProforma, p.ProformaNumber, p.Status)
		}
		proforma = p
	}

	var (
		created *entities.Ticket
		err     error
	)
	for attempt := 1; attempt <= s.cfg.MaxNumberRetries; attempt++ {
		created, err = s.insertTicket(ctx, in)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			break
		}
		logger.Warn("Номер заявки занят параллельным запросом, повтор",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	if err != nil {
		return nil, nil, err
	}

	var warnings []CreationWarning
	if created.IsInsurance() {
		warnings = s.runInsuranceSideEffects(ctx, created, in, proforma)
	}

	s.cache.invalidate(ctx)
	logger.Info("Заявка создана",
		zap.String("ticket_number", created.TicketNumber),
		zap.String("type", string(created.Type)),
		zap.Int("warnings", len(warnings)),
	)
	return created, warnings, nil
}

// insertTicket: автомобиль, номер и сама заявка в одной транзакции.
func (s *TicketService) insertTicket(ctx context.Context, in dto.CreateTicketDTO) (*entities.Ticket, error) {
	var created *entities.Ticket
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		customerType := strings.ToLower(strings.TrimSpace(in.CustomerType))
		vehicleID, err := s.repos.Vehicles.Ensure(ctx, tx, entities.Vehicle{
			CustomerID:   in.CustomerID,
			CustomerType: customerType,
			Make:         utils.NullStringFromPtr(in.VehicleMake),
			Model:        utils.NullStringFromPtr(in.VehicleModel),
			Year:         null.IntFromPtr(in.VehicleYear),
			LicensePlate: strings.TrimSpace(in.LicensePlate),
			ImageURL:     utils.NullStringFromPtr(in.ImageURL),
		})
		if err != nil {
			return err
		}

		number, err := s.repos.Tickets.NextTicketNumber(ctx, tx, s.cfg.NumberPrefix, s.now())
		if err != nil {
			return err
		}

		ticket := entities.Ticket{
			TicketNumber: number,
			CustomerType: customerType,
			CustomerID:   in.CustomerID,
			CustomerName: in.CustomerName,
			VehicleID:    null.Int64From(vehicleID),
			VehicleInfo:  in.VehicleInfo,
			LicensePlate: strings.TrimSpace(in.LicensePlate),
			Title:        in.Title,
			Description:  in.Description,
			Priority:     in.Priority,
			Type:         workflow.NormalizeType(in.Type),
			Status:       workflow.StatusPending,
			ProformaID:   null.Int64FromPtr(in.ProformaID),
		}
		created, err = s.repos.Tickets.Create(ctx, tx, ticket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// sideEffectStep выполняется в собственной транзакции.
type sideEffectStep struct {
	name string
	run  func(tx pgx.Tx) error
}

func (s *TicketService) runInsuranceSideEffects(ctx context.Context, t *entities.Ticket, in dto.CreateTicketDTO, proforma *entities.Proforma) []CreationWarning {
	steps := []sideEffectStep{
		{StepInsuranceRecord, func(tx pgx.Tx) error {
			_, err := s.repos.Insurance.Upsert(ctx, tx, insuranceRecordFor(t, in))
			return err
		}},
		{StepCustomerProfile, func(tx pgx.Tx) error {
			return s.upsertCustomerProfile(ctx, tx, t, in)
		}},
	}
	if proforma != nil {
		steps = append(steps, sideEffectStep{StepBillSnapshot, func(tx pgx.Tx) error {
			_, err := s.repos.Bills.Upsert(ctx, tx, entities.BillFromProforma(t.TicketNumber, s.newBillNumber(), *proforma))
			return err
		}})
	}

	var warnings []CreationWarning
	for _, step := range steps {
		if err := s.txManager.RunInTransaction(ctx, step.run); err != nil {
			warnings = append(warnings, s.reportSideEffect(ctx, t.TicketNumber, step.name, err))
		}
	}
	return warnings
}

func (s *TicketService) reportSideEffect(ctx context.Context, ticketNumber, step string, err error) CreationWarning {
	utils.LoggerFromCtx(ctx, s.logger).Warn("Побочный шаг создания заявки не выполнен",
		zap.String("ticket_number", ticketNumber),
		zap.String("step", step),
		zap.Error(err),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.TicketSideEffectFailedEvent{
			TicketNumber: ticketNumber,
			Step:         step,
			Err:          err,
			RequestID:    utils.RequestIDFromCtx(ctx),
			OccurredAt:   s.now(),
		})
	}
	return CreationWarning{Step: step, Message: err.Error()}
}

func insuranceRecordFor(t *entities.Ticket, in dto.CreateTicketDTO) entities.InsuranceRecord {
	rec := entities.InsuranceRecord{
		TicketNumber: t.TicketNumber,
		CustomerType: t.CustomerType,
		CustomerID:   t.CustomerID,
		OwnerName:    t.CustomerName,
		Phone:        utils.NullStringFromPtr(in.Phone),
		Email:        utils.NullStringFromPtr(in.Email),
		VehicleInfo:  null.StringFrom(t.VehicleInfo),
		LicensePlate: null.StringFrom(t.LicensePlate),
		Status:       string(workflow.StatusPending),
	}
	if d := in.Insurance; d != nil {
		rec.InsuranceCompany = utils.NullStringFromPtr(d.InsuranceCompany)
		rec.PolicyNumber = utils.NullStringFromPtr(d.PolicyNumber)
		rec.AccidentDate = null.TimeFromPtr(d.AccidentDate)
		rec.AccidentLocation = utils.NullStringFromPtr(d.AccidentLocation)
		rec.Description = utils.NullStringFromPtr(d.Description)
	}
	return rec
}

func (s *TicketService) upsertCustomerProfile(ctx context.Context, tx pgx.Tx, t *entities.Ticket, in dto.CreateTicketDTO) error {
	if t.CustomerType == entities.CustomerTypeCompany {
		return s.repos.Customers.UpsertCompany(ctx, tx, entities.CompanyCustomer{
			CustomerID:    t.CustomerID,
			CompanyName:   t.CustomerName,
			ContactPerson: utils.NullStringFromPtr(in.ContactPerson),
			Phone:         utils.NullStringFromPtr(in.Phone),
			Email:         utils.NullStringFromPtr(in.Email),
			Address:       utils.NullStringFromPtr(in.Address),
		})
	}
	return s.repos.Customers.UpsertIndividual(ctx, tx, entities.IndividualCustomer{
		CustomerID: t.CustomerID,
		Name:       t.CustomerName,
		Phone:      utils.NullStringFromPtr(in.Phone),
		Email:      utils.NullStringFromPtr(in.Email),
		Address:    utils.NullStringFromPtr(in.Address),
	})
}

func (s *TicketService) newBillNumber() string {
	return newBillNumber(s.now())
}

func newBillNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf(constants.BillNumberFormat, at.Format(constants.TicketNumberDateLayout), suffix)
}
