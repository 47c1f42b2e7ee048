// Package mocks - заглушки сервисов для тестов контроллеров и роутов.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/services"
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

type MockTicketService struct{ mock.Mock }

func NewMockTicketService(t *testing.T) *MockTicketService {
	return register(t, &MockTicketService{})
}

func (m *MockTicketService) CreateTicket(ctx context.Context, in dto.CreateTicketDTO) (*entities.Ticket, []services.CreationWarning, error) {
	args := m.Called(ctx, in)
	return get[*entities.Ticket](args, 0), get[[]services.CreationWarning](args, 1), args.Error(2)
}

func (m *MockTicketService) ListTickets(ctx context.Context, viewName string, filter types.Filter) ([]dto.AggregatedTicketDTO, uint64, error) {
	args := m.Called(ctx, viewName, filter)
	return get[[]dto.AggregatedTicketDTO](args, 0), get[uint64](args, 1), args.Error(2)
}

func (m *MockTicketService) GetTicket(ctx context.Context, ticketNumber string) (*dto.AggregatedTicketDTO, error) {
	args := m.Called(ctx, ticketNumber)
	return get[*dto.AggregatedTicketDTO](args, 0), args.Error(1)
}

func (m *MockTicketService) ExportTickets(ctx context.Context, viewName string, filter types.Filter) ([]dto.AggregatedTicketDTO, error) {
	args := m.Called(ctx, viewName, filter)
	return get[[]dto.AggregatedTicketDTO](args, 0), args.Error(1)
}

func (m *MockTicketService) TransitionStatus(ctx context.Context, ticketNumber string, in dto.TransitionTicketDTO) (*entities.Ticket, error) {
	args := m.Called(ctx, ticketNumber, in)
	return get[*entities.Ticket](args, 0), args.Error(1)
}

func (m *MockTicketService) AssignMechanic(ctx context.Context, ticketNumber string, in dto.AssignMechanicDTO) (*dto.MechanicAssignmentResultDTO, error) {
	args := m.Called(ctx, ticketNumber, in)
	return get[*dto.MechanicAssignmentResultDTO](args, 0), args.Error(1)
}

func (m *MockTicketService) AddProgressLog(ctx context.Context, ticketNumber string, in dto.CreateProgressLogDTO) (*entities.ProgressLog, error) {
	args := m.Called(ctx, ticketNumber, in)
	return get[*entities.ProgressLog](args, 0), args.Error(1)
}

func (m *MockTicketService) RecordInspection(ctx context.Context, ticketNumber string, in dto.CreateInspectionDTO) (*dto.InspectionResultDTO, error) {
	args := m.Called(ctx, ticketNumber, in)
	return get[*dto.InspectionResultDTO](args, 0), args.Error(1)
}

type MockBillingService struct{ mock.Mock }

func NewMockBillingService(t *testing.T) *MockBillingService {
	return register(t, &MockBillingService{})
}

func (m *MockBillingService) FinalizeBill(ctx context.Context, ticketNumber string, in dto.FinalizeBillDTO) (*entities.Bill, error) {
	args := m.Called(ctx, ticketNumber, in)
	return get[*entities.Bill](args, 0), args.Error(1)
}

type MockToolService struct{ mock.Mock }

func NewMockToolService(t *testing.T) *MockToolService {
	return register(t, &MockToolService{})
}

func (m *MockToolService) AssignTool(ctx context.Context, toolID int64, in dto.AssignToolDTO) (*dto.ToolOperationResultDTO, error) {
	args := m.Called(ctx, toolID, in)
	return get[*dto.ToolOperationResultDTO](args, 0), args.Error(1)
}

func (m *MockToolService) ReturnTool(ctx context.Context, assignmentID int64, in dto.ReturnToolDTO) (*dto.ToolOperationResultDTO, error) {
	args := m.Called(ctx, assignmentID, in)
	return get[*dto.ToolOperationResultDTO](args, 0), args.Error(1)
}

type MockPaymentLedgerService struct{ mock.Mock }

func NewMockPaymentLedgerService(t *testing.T) *MockPaymentLedgerService {
	return register(t, &MockPaymentLedgerService{})
}

func (m *MockPaymentLedgerService) RegisterMechanic(ctx context.Context, ticketNumber string, in dto.RegisterOutsourcedMechanicDTO) (*entities.OutsourcedMechanic, error) {
	args := m.Called(ctx, ticketNumber, in)
	return get[*entities.OutsourcedMechanic](args, 0), args.Error(1)
}

func (m *MockPaymentLedgerService) RecordPayment(ctx context.Context, ticketNumber string, in dto.RecordPaymentDTO) (*dto.MechanicLedgerDTO, error) {
	args := m.Called(ctx, ticketNumber, in)
	return get[*dto.MechanicLedgerDTO](args, 0), args.Error(1)
}

func (m *MockPaymentLedgerService) Ledger(ctx context.Context, ticketNumber string) ([]dto.MechanicLedgerDTO, error) {
	args := m.Called(ctx, ticketNumber)
	return get[[]dto.MechanicLedgerDTO](args, 0), args.Error(1)
}

type MockProformaService struct{ mock.Mock }

func NewMockProformaService(t *testing.T) *MockProformaService {
	return register(t, &MockProformaService{})
}

func (m *MockProformaService) ListAccepted(ctx context.Context, filter types.Filter) ([]entities.Proforma, uint64, error) {
	args := m.Called(ctx, filter)
	return get[[]entities.Proforma](args, 0), get[uint64](args, 1), args.Error(2)
}
