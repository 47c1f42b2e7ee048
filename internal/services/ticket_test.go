package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/events"
	"ticket-system/internal/repositories"
	"ticket-system/internal/repositories/mocks"
	"ticket-system/internal/workflow"
	"ticket-system/pkg/config"
	"ticket-system/pkg/constants"
	"ticket-system/pkg/contextkeys"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/eventbus"
	"ticket-system/pkg/types"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) named(name string) []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []eventbus.Event
	for _, e := range p.events {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

// stubAggregation запоминает политики, с которыми его вызвали.
type stubAggregation struct {
	calls []AggregateOptions
	err   error
}

func (a *stubAggregation) Aggregate(_ context.Context, tickets []entities.Ticket, opts AggregateOptions) ([]dto.AggregatedTicketDTO, error) {
	a.calls = append(a.calls, opts)
	if a.err != nil {
		return nil, a.err
	}
	out := make([]dto.AggregatedTicketDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, dto.AggregatedTicketDTO{ID: t.ID, TicketNumber: t.TicketNumber, Status: t.Status, Projection: string(opts.Projection)})
	}
	return out, nil
}

type stubImages struct{ url string }

func (s stubImages) Resolve(_ context.Context, stored string) string {
	if stored == "" {
		return ""
	}
	return s.url
}

type ticketFixture struct {
	svc       *TicketService
	tx        *mocks.TxManager
	tickets   *mocks.MockTicketRepository
	children  *mocks.MockTicketChildRepository
	customers *mocks.MockCustomerRepository
	vehicles  *mocks.MockVehicleRepository
	insurance *mocks.MockInsuranceRepository
	proformas *mocks.MockProformaRepository
	bills     *mocks.MockBillRepository
	agg       *stubAggregation
	events    *recordingPublisher
}

func newTicketFixture(t *testing.T) *ticketFixture {
	f := &ticketFixture{
		tx:        &mocks.TxManager{},
		tickets:   mocks.NewMockTicketRepository(t),
		children:  mocks.NewMockTicketChildRepository(t),
		customers: mocks.NewMockCustomerRepository(t),
		vehicles:  mocks.NewMockVehicleRepository(t),
		insurance: mocks.NewMockInsuranceRepository(t),
		proformas: mocks.NewMockProformaRepository(t),
		bills:     mocks.NewMockBillRepository(t),
		agg:       &stubAggregation{},
		events:    &recordingPublisher{},
	}
	f.svc = NewTicketService(f.tx, TicketRepositories{
		Tickets:   f.tickets,
		Children:  f.children,
		Customers: f.customers,
		Vehicles:  f.vehicles,
		Insurance: f.insurance,
		Proformas: f.proformas,
		Bills:     f.bills,
	}, f.agg, stubImages{url: "https://cdn.example/car.jpg"}, f.events,
		config.TicketsConfig{NumberPrefix: "TKT", MaxNumberRetries: 3}, 0, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func validCreateDTO(ticketType string) dto.CreateTicketDTO {
	return dto.CreateTicketDTO{
		CustomerType: "Individual",
		CustomerID:   gofakeit.UUID(),
		CustomerName: gofakeit.Name(),
		VehicleInfo:  gofakeit.CarMaker() + " " + gofakeit.CarModel(),
		LicensePlate: " 01AB123 ",
		Title:        "Замена тормозных колодок",
		Description:  gofakeit.Sentence(8),
		Priority:     "high",
		Type:         ticketType,
	}
}

// expectInsert настраивает успешную вставку заявки; созданной считается переданная заявка.
func (f *ticketFixture) expectInsert(created entities.Ticket) {
	created.ID = 1
	created.Status = workflow.StatusPending
	f.vehicles.On("Ensure", mock.Anything, mock.Anything, mock.Anything).Return(int64(7), nil).Once()
	f.tickets.On("NextTicketNumber", mock.Anything, mock.Anything, "TKT", fixedNow).Return(created.TicketNumber, nil).Once()
	f.tickets.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(&created, nil).Once()
}

func insuranceTicket(number, customerType string) entities.Ticket {
	return entities.Ticket{
		TicketNumber: number,
		CustomerType: customerType,
		CustomerID:   "C-1",
		CustomerName: "Bahrom Logistics",
		Type:         workflow.TicketTypeInsurance,
	}
}

func TestCreateTicket_MissingFieldsListedTogether(t *testing.T) {
	f := newTicketFixture(t)

	_, _, err := f.svc.CreateTicket(context.Background(), dto.CreateTicketDTO{CustomerName: "Ali", Title: "   "})
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"customer_type", "customer_id", "vehicle_info", "license_plate",
		"title", "description", "priority", "type",
	}, verr.Fields)
	assert.Zero(t, f.tx.Calls)
}

func TestCreateTicket_ServiceTicketHasNoSideEffects(t *testing.T) {
	f := newTicketFixture(t)
	f.vehicles.On("Ensure", mock.Anything, mock.Anything, mock.MatchedBy(func(v entities.Vehicle) bool {
		return v.LicensePlate == "01AB123" && v.CustomerType == "individual"
	})).Return(int64(7), nil).Once()
	f.tickets.On("NextTicketNumber", mock.Anything, mock.Anything, "TKT", fixedNow).Return("TKT-20240315-0001", nil).Once()
	f.tickets.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(t entities.Ticket) bool {
		return t.Status == workflow.StatusPending &&
			t.Type == workflow.TicketTypeService &&
			t.TicketNumber == "TKT-20240315-0001" &&
			t.VehicleID == null.Int64From(7)
	})).Return(&entities.Ticket{ID: 1, TicketNumber: "TKT-20240315-0001", Type: workflow.TicketTypeService, Status: workflow.StatusPending}, nil).Once()

	created, warnings, err := f.svc.CreateTicket(context.Background(), validCreateDTO("service"))
	require.NoError(t, err)
	assert.Equal(t, "TKT-20240315-0001", created.TicketNumber)
	assert.Equal(t, workflow.StatusPending, created.Status)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, f.tx.Calls)
	f.insurance.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	f.customers.AssertNotCalled(t, "UpsertIndividual", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTicket_InsuranceSideEffects(t *testing.T) {
	f := newTicketFixture(t)
	proformaID := int64(12)
	f.proformas.On("FindByID", mock.Anything, mock.Anything, proformaID).Return(&entities.Proforma{
		ID: proformaID, ProformaNumber: "PF-12", Status: entities.ProformaStatusAccepted,
		TotalAmount: decimal.RequireFromString("500.00"),
	}, nil).Once()
	f.expectInsert(insuranceTicket("TKT-20240315-0002", entities.CustomerTypeIndividual))
	f.insurance.On("Upsert", mock.Anything, mock.Anything, mock.MatchedBy(func(r entities.InsuranceRecord) bool {
		return r.TicketNumber == "TKT-20240315-0002" && r.InsuranceCompany.String == "Bima"
	})).Return(&entities.InsuranceRecord{ID: 1}, nil).Once()
	f.customers.On("UpsertIndividual", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.bills.On("Upsert", mock.Anything, mock.Anything, mock.MatchedBy(func(b entities.Bill) bool {
		return b.TicketNumber == "TKT-20240315-0002" &&
			b.ProformaID.Int64 == proformaID &&
			b.FinalTotal.Equal(decimal.RequireFromString("500"))
	})).Return(&entities.Bill{ID: 3}, nil).Once()

	in := validCreateDTO("Insurance")
	in.ProformaID = &proformaID
	company := "Bima"
	in.Insurance = &dto.InsuranceDetailsDTO{InsuranceCompany: &company}

	created, warnings, err := f.svc.CreateTicket(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, created.IsInsurance())
	assert.Empty(t, warnings)
	// вставка и три побочных шага, каждый в своей транзакции
	assert.Equal(t, 4, f.tx.Calls)
}

func TestCreateTicket_SideEffectFailureIsWarning(t *testing.T) {
	f := newTicketFixture(t)
	f.expectInsert(insuranceTicket("TKT-20240315-0003", entities.CustomerTypeIndividual))
	f.insurance.On("Upsert", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("insurance table locked")).Once()
	f.customers.On("UpsertIndividual", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	ctx := context.WithValue(context.Background(), contextkeys.RequestIDKey, "req-42")
	created, warnings, err := f.svc.CreateTicket(ctx, validCreateDTO("insurance"))
	require.NoError(t, err, "ошибка побочного шага не откатывает заявку")
	require.NotNil(t, created)

	require.Len(t, warnings, 1)
	assert.Equal(t, StepInsuranceRecord, warnings[0].Step)
	assert.Contains(t, warnings[0].String(), "insurance table locked")

	published := f.events.named(events.TicketSideEffectFailedName)
	require.Len(t, published, 1)
	failed := published[0].(events.TicketSideEffectFailedEvent)
	assert.Equal(t, "TKT-20240315-0003", failed.TicketNumber)
	assert.Equal(t, "req-42", failed.RequestID)
	f.bills.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTicket_CompanyProfile(t *testing.T) {
	f := newTicketFixture(t)
	f.expectInsert(insuranceTicket("TKT-20240315-0004", entities.CustomerTypeCompany))
	f.insurance.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(&entities.InsuranceRecord{}, nil).Once()
	f.customers.On("UpsertCompany", mock.Anything, mock.Anything, mock.MatchedBy(func(c entities.CompanyCustomer) bool {
		return c.CompanyName != ""
	})).Return(nil).Once()

	in := validCreateDTO("insurance")
	in.CustomerType = "COMPANY"
	_, warnings, err := f.svc.CreateTicket(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestCreateTicket_RejectsNotAcceptedProforma(t *testing.T) {
	f := newTicketFixture(t)
	id := int64(5)
	f.proformas.On("FindByID", mock.Anything, mock.Anything, id).
		Return(&entities.Proforma{ID: id, ProformaNumber: "PF-5", Status: "Draft"}, nil).Once()

	in := validCreateDTO("service")
	in.ProformaID = &id
	_, _, err := f.svc.CreateTicket(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidProforma)
	assert.Zero(t, f.tx.Calls)
}

func TestCreateTicket_RetriesOnNumberConflict(t *testing.T) {
	f := newTicketFixture(t)
	f.vehicles.On("Ensure", mock.Anything, mock.Anything, mock.Anything).Return(int64(7), nil).Twice()
	f.tickets.On("NextTicketNumber", mock.Anything, mock.Anything, "TKT", fixedNow).Return("TKT-20240315-0005", nil).Once()
	f.tickets.On("NextTicketNumber", mock.Anything, mock.Anything, "TKT", fixedNow).Return("TKT-20240315-0006", nil).Once()
	f.tickets.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(t entities.Ticket) bool {
		return t.TicketNumber == "TKT-20240315-0005"
	})).Return(nil, fmt.Errorf("номер занят: %w", apperrors.ErrConflict)).Once()
	f.tickets.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(t entities.Ticket) bool {
		return t.TicketNumber == "TKT-20240315-0006"
	})).Return(&entities.Ticket{ID: 2, TicketNumber: "TKT-20240315-0006", Type: workflow.TicketTypeService}, nil).Once()

	created, _, err := f.svc.CreateTicket(context.Background(), validCreateDTO("service"))
	require.NoError(t, err)
	assert.Equal(t, "TKT-20240315-0006", created.TicketNumber)
	assert.Equal(t, 2, f.tx.Calls)
}

func TestCreateTicket_GivesUpAfterRetries(t *testing.T) {
	f := newTicketFixture(t)
	f.vehicles.On("Ensure", mock.Anything, mock.Anything, mock.Anything).Return(int64(7), nil).Times(3)
	f.tickets.On("NextTicketNumber", mock.Anything, mock.Anything, "TKT", fixedNow).Return("TKT-20240315-0007", nil).Times(3)
	f.tickets.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperrors.ErrConflict).Times(3)

	_, _, err := f.svc.CreateTicket(context.Background(), validCreateDTO("service"))
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 3, f.tx.Calls)
}

func ticketIn(number string, status workflow.Status, typ workflow.TicketType) *entities.Ticket {
	return &entities.Ticket{ID: 1, TicketNumber: number, Status: status, Type: typ}
}

// expectMove настраивает смену статуса и запись журнала.
func (f *ticketFixture) expectMove(number string, to workflow.Status, typ workflow.TicketType) {
	f.tickets.On("UpdateStatus", mock.Anything, mock.Anything, number, to, mock.Anything).
		Return(ticketIn(number, to, typ), nil).Once()
	f.children.On("CreateProgressLog", mock.Anything, mock.Anything, mock.MatchedBy(func(l entities.ProgressLog) bool {
		return l.Status.String == string(to)
	})).Return(&entities.ProgressLog{ID: 1}, nil).Once()
}

func TestTransitionStatus(t *testing.T) {
	t.Run("допустимый переход", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-1").
			Return(ticketIn("T-1", workflow.StatusInProgress, workflow.TicketTypeService), nil).Once()
		f.expectMove("T-1", workflow.StatusReadyForInspection, workflow.TicketTypeService)

		updated, err := f.svc.TransitionStatus(context.Background(), "T-1", dto.TransitionTicketDTO{Status: "Ready For Inspection"})
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusReadyForInspection, updated.Status)

		published := f.events.named(events.TicketStatusChangedName)
		require.Len(t, published, 1)
		change := published[0].(events.TicketStatusChangedEvent)
		assert.Equal(t, "in-progress", change.From)
		assert.Equal(t, "ready-for-inspection", change.To)
	})

	t.Run("завершение ставит completed_at", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-2").
			Return(ticketIn("T-2", workflow.StatusAwaitingBill, workflow.TicketTypeService), nil).Once()
		f.tickets.On("UpdateStatus", mock.Anything, mock.Anything, "T-2", workflow.StatusCompleted, mock.MatchedBy(func(at *time.Time) bool {
			return at != nil && at.Equal(fixedNow)
		})).Return(ticketIn("T-2", workflow.StatusCompleted, workflow.TicketTypeService), nil).Once()
		f.children.On("CreateProgressLog", mock.Anything, mock.Anything, mock.Anything).Return(&entities.ProgressLog{}, nil).Once()

		_, err := f.svc.TransitionStatus(context.Background(), "T-2", dto.TransitionTicketDTO{Status: "done"})
		require.NoError(t, err)
	})

	t.Run("недопустимый переход", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-3").
			Return(ticketIn("T-3", workflow.StatusSuccessfulInspection, workflow.TicketTypeService), nil).Once()

		_, err := f.svc.TransitionStatus(context.Background(), "T-3", dto.TransitionTicketDTO{Status: "awaiting-survey"})
		var ite *workflow.IllegalTransitionError
		require.ErrorAs(t, err, &ite)
		assert.Equal(t, workflow.StatusSuccessfulInspection, ite.From)
		f.tickets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.events.named(events.TicketStatusChangedName))
	})

	t.Run("неизвестный статус", func(t *testing.T) {
		f := newTicketFixture(t)
		_, err := f.svc.TransitionStatus(context.Background(), "T-4", dto.TransitionTicketDTO{Status: "teleported"})
		var iie *apperrors.InvalidInputError
		require.ErrorAs(t, err, &iie)
		assert.Zero(t, f.tx.Calls)
	})
}

func TestAssignMechanic(t *testing.T) {
	t.Run("pending переходит в assigned", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-1").
			Return(ticketIn("T-1", workflow.StatusPending, workflow.TicketTypeService), nil).Once()
		f.children.On("CreateMechanicAssignment", mock.Anything, mock.Anything, mock.MatchedBy(func(a entities.MechanicAssignment) bool {
			return a.MechanicName == "Rustam" && a.Status == MechanicAssignmentActive
		})).Return(&entities.MechanicAssignment{ID: 4, TicketNumber: "T-1", MechanicName: "Rustam"}, nil).Once()
		f.expectMove("T-1", workflow.StatusAssigned, workflow.TicketTypeService)

		res, err := f.svc.AssignMechanic(context.Background(), "T-1", dto.AssignMechanicDTO{MechanicID: "m-1", MechanicName: "Rustam"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.Assignment.ID)
		assert.Equal(t, workflow.StatusAssigned, res.Ticket.Status)
		assert.Len(t, f.events.named(events.TicketStatusChangedName), 1)
	})

	t.Run("в работе статус не меняется", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-2").
			Return(ticketIn("T-2", workflow.StatusInProgress, workflow.TicketTypeService), nil).Once()
		f.children.On("CreateMechanicAssignment", mock.Anything, mock.Anything, mock.Anything).
			Return(&entities.MechanicAssignment{ID: 5}, nil).Once()

		res, err := f.svc.AssignMechanic(context.Background(), "T-2", dto.AssignMechanicDTO{MechanicID: "m-2", MechanicName: "Bek"})
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusInProgress, res.Ticket.Status)
		assert.Empty(t, f.events.named(events.TicketStatusChangedName))
	})

	t.Run("закрытая заявка", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-3").
			Return(ticketIn("T-3", workflow.StatusCompleted, workflow.TicketTypeService), nil).Once()

		_, err := f.svc.AssignMechanic(context.Background(), "T-3", dto.AssignMechanicDTO{MechanicID: "m", MechanicName: "n"})
		assert.ErrorIs(t, err, workflow.ErrIllegalTransition)
	})
}

func TestRecordInspection(t *testing.T) {
	t.Run("успешная проверка из очереди", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-1").
			Return(ticketIn("T-1", workflow.StatusReadyForInspection, workflow.TicketTypeInsurance), nil).Once()
		f.expectMove("T-1", workflow.StatusInspection, workflow.TicketTypeInsurance)
		f.children.On("CreateInspection", mock.Anything, mock.Anything, mock.MatchedBy(func(i entities.Inspection) bool {
			return i.OilLevel.String == "yes" && i.PowerSteeringFluid.String == "ok" && !i.Wipers.Valid
		})).Return(&entities.Inspection{ID: 9, TicketNumber: "T-1", OilLevel: null.StringFrom("yes"), InspectionStatus: null.StringFrom("passed")}, nil).Once()
		f.expectMove("T-1", workflow.StatusSuccessfulInspection, workflow.TicketTypeInsurance)

		res, err := f.svc.RecordInspection(context.Background(), "T-1", dto.CreateInspectionDTO{
			InspectionStatus: "passed",
			Checklist:        map[string]string{"Oil Level": "yes", "power-steering-fluid": "ok", "wipers": " "},
		})
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusSuccessfulInspection, res.Ticket.Status)
		require.NotNil(t, res.Inspection.Checklist.OilLevel)
		assert.True(t, *res.Inspection.Checklist.OilLevel)
		assert.Len(t, f.events.named(events.TicketStatusChangedName), 2)
	})

	t.Run("проверка не пройдена", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-2").
			Return(ticketIn("T-2", workflow.StatusInspection, workflow.TicketTypeService), nil).Once()
		f.children.On("CreateInspection", mock.Anything, mock.Anything, mock.Anything).Return(&entities.Inspection{ID: 1}, nil).Once()
		f.expectMove("T-2", workflow.StatusInspectionFailed, workflow.TicketTypeService)

		res, err := f.svc.RecordInspection(context.Background(), "T-2", dto.CreateInspectionDTO{InspectionStatus: "failed"})
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusInspectionFailed, res.Ticket.Status)
	})

	for _, tc := range []struct {
		outcome string
		want    workflow.Status
	}{
		{"Successful Inspection", workflow.StatusSuccessfulInspection},
		{"successful_inspection", workflow.StatusSuccessfulInspection},
		{"Inspection Failed", workflow.StatusInspectionFailed},
		{"INSPECTION FAILED", workflow.StatusInspectionFailed},
	} {
		t.Run("исход "+tc.outcome, func(t *testing.T) {
			f := newTicketFixture(t)
			f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-5").
				Return(ticketIn("T-5", workflow.StatusInspection, workflow.TicketTypeService), nil).Once()
			f.children.On("CreateInspection", mock.Anything, mock.Anything, mock.Anything).Return(&entities.Inspection{ID: 5}, nil).Once()
			f.expectMove("T-5", tc.want, workflow.TicketTypeService)

			res, err := f.svc.RecordInspection(context.Background(), "T-5", dto.CreateInspectionDTO{InspectionStatus: tc.outcome})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Ticket.Status)
		})
	}

	t.Run("нераспознанный исход", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-3").
			Return(ticketIn("T-3", workflow.StatusInspection, workflow.TicketTypeService), nil).Once()
		f.children.On("CreateInspection", mock.Anything, mock.Anything, mock.Anything).Return(&entities.Inspection{ID: 2}, nil).Once()

		res, err := f.svc.RecordInspection(context.Background(), "T-3", dto.CreateInspectionDTO{InspectionStatus: "needs second look"})
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusInspection, res.Ticket.Status)
		f.tickets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("заявка еще в работе", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("FindByNumberForUpdate", mock.Anything, mock.Anything, "T-4").
			Return(ticketIn("T-4", workflow.StatusInProgress, workflow.TicketTypeService), nil).Once()

		_, err := f.svc.RecordInspection(context.Background(), "T-4", dto.CreateInspectionDTO{InspectionStatus: "passed"})
		assert.ErrorIs(t, err, workflow.ErrIllegalTransition)
	})
}

func TestAddProgressLog(t *testing.T) {
	f := newTicketFixture(t)
	_, err := f.svc.AddProgressLog(context.Background(), "T-1", dto.CreateProgressLogDTO{Description: "  "})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"description"}, verr.Fields)

	f.tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").
		Return(ticketIn("T-1", workflow.StatusInProgress, workflow.TicketTypeService), nil).Once()
	status := "Working"
	f.children.On("CreateProgressLog", mock.Anything, mock.Anything, mock.MatchedBy(func(l entities.ProgressLog) bool {
		return l.Status.String == string(workflow.StatusInProgress) && l.Description == "Сняли колесо"
	})).Return(&entities.ProgressLog{ID: 3, Description: "Сняли колесо"}, nil).Once()

	created, err := f.svc.AddProgressLog(context.Background(), "T-1", dto.CreateProgressLogDTO{Description: "Сняли колесо", Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	f.tickets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListTickets_UsesSummaryAndSoftFailure(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.On("List", mock.Anything, mock.MatchedBy(func(v workflow.View) bool { return v.Name == workflow.ViewActive }), mock.Anything).
		Return([]entities.Ticket{*ticketIn("T-1", workflow.StatusPending, workflow.TicketTypeService)}, uint64(1), nil).Once()

	items, total, err := f.svc.ListTickets(context.Background(), "", types.Filter{Page: 1, Limit: 10, WithPagination: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, []AggregateOptions{listAggregation}, f.agg.calls)
	assert.Equal(t, ProjectionSummary, f.agg.calls[0].Projection)
	assert.Equal(t, FailSoft, f.agg.calls[0].Mode)
}

func TestListTickets_UnknownView(t *testing.T) {
	f := newTicketFixture(t)
	_, _, err := f.svc.ListTickets(context.Background(), "archive", types.Filter{})
	var iie *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &iie)
}

func TestListTickets_Cache(t *testing.T) {
	newCached := func(t *testing.T) (*ticketFixture, *mocks.MockCacheRepository) {
		f := newTicketFixture(t)
		cache := mocks.NewMockCacheRepository(t)
		f.svc.cache = newListCache(cache, time.Minute, zap.NewNop())
		return f, cache
	}
	notVersion := mock.MatchedBy(func(k string) bool { return k != constants.CacheKeyTicketListVersion })

	t.Run("попадание", func(t *testing.T) {
		f, cache := newCached(t)
		page, _ := json.Marshal(ticketPage{Items: []dto.AggregatedTicketDTO{{TicketNumber: "T-9"}}, Total: 1})
		cache.On("Get", mock.Anything, constants.CacheKeyTicketListVersion).Return("3", nil).Once()
		cache.On("Get", mock.Anything, mock.MatchedBy(func(k string) bool {
			return strings.HasPrefix(k, "tickets:list:v3:active:")
		})).Return(string(page), nil).Once()

		items, total, err := f.svc.ListTickets(context.Background(), workflow.ViewActive, types.Filter{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		assert.Equal(t, "T-9", items[0].TicketNumber)
		f.tickets.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("промах", func(t *testing.T) {
		f, cache := newCached(t)
		cache.On("Get", mock.Anything, constants.CacheKeyTicketListVersion).Return("", repositories.ErrCacheMiss).Once()
		cache.On("Get", mock.Anything, notVersion).Return("", repositories.ErrCacheMiss).Once()
		cache.On("Set", mock.Anything, notVersion, mock.Anything, time.Minute).Return(nil).Once()
		f.tickets.On("List", mock.Anything, mock.Anything, mock.Anything).Return([]entities.Ticket{}, uint64(0), nil).Once()

		items, _, err := f.svc.ListTickets(context.Background(), workflow.ViewBilling, types.Filter{})
		require.NoError(t, err)
		assert.NotNil(t, items)
	})

	t.Run("Redis недоступен", func(t *testing.T) {
		f, cache := newCached(t)
		cache.On("Get", mock.Anything, constants.CacheKeyTicketListVersion).Return("", errors.New("connection refused")).Once()
		f.tickets.On("List", mock.Anything, mock.Anything, mock.Anything).Return([]entities.Ticket{}, uint64(0), nil).Once()

		_, _, err := f.svc.ListTickets(context.Background(), workflow.ViewAll, types.Filter{})
		require.NoError(t, err)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("запись сбрасывает версию", func(t *testing.T) {
		f, cache := newCached(t)
		f.tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").
			Return(ticketIn("T-1", workflow.StatusInProgress, workflow.TicketTypeService), nil).Once()
		f.children.On("CreateProgressLog", mock.Anything, mock.Anything, mock.Anything).Return(&entities.ProgressLog{}, nil).Once()
		cache.On("Incr", mock.Anything, constants.CacheKeyTicketListVersion).Return(int64(4), nil).Once()

		_, err := f.svc.AddProgressLog(context.Background(), "T-1", dto.CreateProgressLogDTO{Description: "x"})
		require.NoError(t, err)
	})
}

func TestGetTicket(t *testing.T) {
	f := newTicketFixture(t)
	ticket := ticketIn("T-1", workflow.StatusInProgress, workflow.TicketTypeService)
	ticket.VehicleID = null.Int64From(7)
	f.tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").Return(ticket, nil).Once()
	f.vehicles.On("FindByID", mock.Anything, int64(7)).Return(&entities.Vehicle{ID: 7, ImageURL: null.StringFrom("cars/7.jpg")}, nil).Once()

	res, err := f.svc.GetTicket(context.Background(), "T-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/car.jpg", res.VehicleImageURL)
	assert.Equal(t, []AggregateOptions{detailAggregation}, f.agg.calls)
}

func TestGetTicket_NotFound(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-404").Return(nil, apperrors.ErrTicketNotFound).Once()

	_, err := f.svc.GetTicket(context.Background(), "T-404")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestExportTickets_FailHardWithoutPagination(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.On("List", mock.Anything, mock.Anything, mock.MatchedBy(func(fl types.Filter) bool { return !fl.WithPagination })).
		Return([]entities.Ticket{}, uint64(0), nil).Once()

	_, err := f.svc.ExportTickets(context.Background(), workflow.ViewClosed, types.Filter{Page: 2, Limit: 5, WithPagination: true})
	require.NoError(t, err)
	assert.Equal(t, []AggregateOptions{exportAggregation}, f.agg.calls)

	f.agg.err = &ChildFetchError{Kind: KindOrderedParts, Err: errors.New("boom")}
	f.tickets.On("List", mock.Anything, mock.Anything, mock.Anything).Return([]entities.Ticket{}, uint64(0), nil).Once()
	_, err = f.svc.ExportTickets(context.Background(), workflow.ViewClosed, types.Filter{})
	assert.Error(t, err)
}
