// Package mocks - заглушки репозиториев на testify/mock для тестов сервисов.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"ticket-system/internal/entities"
	"ticket-system/internal/workflow"
	"ticket-system/pkg/types"
)

func get[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

func register[M interface{ AssertExpectations(mock.TestingT) bool }](t *testing.T, m M) M {
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// TxManager выполняет fn сразу, без транзакции; tx внутри fn равен nil.
type TxManager struct {
	Calls int
}

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.Calls++
	return fn(nil)
}

type MockTicketRepository struct{ mock.Mock }

func NewMockTicketRepository(t *testing.T) *MockTicketRepository {
	return register(t, &MockTicketRepository{})
}

func (m *MockTicketRepository) List(ctx context.Context, view workflow.View, filter types.Filter) ([]entities.Ticket, uint64, error) {
	args := m.Called(ctx, view, filter)
	return get[[]entities.Ticket](args, 0), get[uint64](args, 1), args.Error(2)
}

func (m *MockTicketRepository) FindByNumber(ctx context.Context, tx pgx.Tx, ticketNumber string) (*entities.Ticket, error) {
	args := m.Called(ctx, tx, ticketNumber)
	return get[*entities.Ticket](args, 0), args.Error(1)
}

func (m *MockTicketRepository) FindByNumberForUpdate(ctx context.Context, tx pgx.Tx, ticketNumber string) (*entities.Ticket, error) {
	args := m.Called(ctx, tx, ticketNumber)
	return get[*entities.Ticket](args, 0), args.Error(1)
}

func (m *MockTicketRepository) NextTicketNumber(ctx context.Context, tx pgx.Tx, prefix string, day time.Time) (string, error) {
	args := m.Called(ctx, tx, prefix, day)
	return args.String(0), args.Error(1)
}

func (m *MockTicketRepository) Create(ctx context.Context, tx pgx.Tx, t entities.Ticket) (*entities.Ticket, error) {
	args := m.Called(ctx, tx, t)
	return get[*entities.Ticket](args, 0), args.Error(1)
}

func (m *MockTicketRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, ticketNumber string, status workflow.Status, completedAt *time.Time) (*entities.Ticket, error) {
	args := m.Called(ctx, tx, ticketNumber, status, completedAt)
	return get[*entities.Ticket](args, 0), args.Error(1)
}

type MockTicketChildRepository struct{ mock.Mock }

func NewMockTicketChildRepository(t *testing.T) *MockTicketChildRepository {
	return register(t, &MockTicketChildRepository{})
}

func (m *MockTicketChildRepository) FetchDisassembledParts(ctx context.Context, ticketNumbers []string) ([]entities.DisassembledPart, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.DisassembledPart](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchProgressLogs(ctx context.Context, ticketNumbers []string) ([]entities.ProgressLog, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.ProgressLog](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchInspections(ctx context.Context, ticketNumbers []string) ([]entities.Inspection, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.Inspection](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchOutsourcedMechanics(ctx context.Context, ticketNumbers []string) ([]entities.OutsourcedMechanic, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.OutsourcedMechanic](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchMechanicPayments(ctx context.Context, ticketNumbers []string) ([]entities.PaymentInstallment, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.PaymentInstallment](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchOutsourceStock(ctx context.Context, ticketNumbers []string) ([]entities.OutsourceStockRequest, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.OutsourceStockRequest](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchOrderedParts(ctx context.Context, ticketNumbers []string) ([]entities.OrderedPart, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.OrderedPart](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchToolAssignments(ctx context.Context, ticketNumbers []string) ([]entities.ToolAssignment, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.ToolAssignment](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchMechanicAssignments(ctx context.Context, ticketNumbers []string) ([]entities.MechanicAssignment, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.MechanicAssignment](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) FetchInsurance(ctx context.Context, ticketNumbers []string) ([]entities.InsuranceRecord, error) {
	args := m.Called(ctx, ticketNumbers)
	return get[[]entities.InsuranceRecord](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) CreateMechanicAssignment(ctx context.Context, tx pgx.Tx, a entities.MechanicAssignment) (*entities.MechanicAssignment, error) {
	args := m.Called(ctx, tx, a)
	return get[*entities.MechanicAssignment](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) CreateProgressLog(ctx context.Context, tx pgx.Tx, l entities.ProgressLog) (*entities.ProgressLog, error) {
	args := m.Called(ctx, tx, l)
	return get[*entities.ProgressLog](args, 0), args.Error(1)
}

func (m *MockTicketChildRepository) CreateInspection(ctx context.Context, tx pgx.Tx, i entities.Inspection) (*entities.Inspection, error) {
	args := m.Called(ctx, tx, i)
	return get[*entities.Inspection](args, 0), args.Error(1)
}
