package mocks

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"ticket-system/internal/entities"
)

type MockToolRepository struct{ mock.Mock }

func NewMockToolRepository(t *testing.T) *MockToolRepository {
	return register(t, &MockToolRepository{})
}

func (m *MockToolRepository) FindByID(ctx context.Context, tx pgx.Tx, id int64) (*entities.Tool, error) {
	args := m.Called(ctx, tx, id)
	return get[*entities.Tool](args, 0), args.Error(1)
}

func (m *MockToolRepository) Reserve(ctx context.Context, tx pgx.Tx, toolID int64, quantity int) (*entities.Tool, error) {
	args := m.Called(ctx, tx, toolID, quantity)
	return get[*entities.Tool](args, 0), args.Error(1)
}

func (m *MockToolRepository) Release(ctx context.Context, tx pgx.Tx, toolID int64, quantity int) (*entities.Tool, error) {
	args := m.Called(ctx, tx, toolID, quantity)
	return get[*entities.Tool](args, 0), args.Error(1)
}

func (m *MockToolRepository) CreateAssignment(ctx context.Context, tx pgx.Tx, a entities.ToolAssignment) (*entities.ToolAssignment, error) {
	args := m.Called(ctx, tx, a)
	return get[*entities.ToolAssignment](args, 0), args.Error(1)
}

func (m *MockToolRepository) FindAssignmentForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*entities.ToolAssignment, error) {
	args := m.Called(ctx, tx, id)
	return get[*entities.ToolAssignment](args, 0), args.Error(1)
}

func (m *MockToolRepository) RegisterReturn(ctx context.Context, tx pgx.Tx, id int64, quantity int) (*entities.ToolAssignment, error) {
	args := m.Called(ctx, tx, id, quantity)
	return get[*entities.ToolAssignment](args, 0), args.Error(1)
}

type MockOutsourceMechanicRepository struct{ mock.Mock }

func NewMockOutsourceMechanicRepository(t *testing.T) *MockOutsourceMechanicRepository {
	return register(t, &MockOutsourceMechanicRepository{})
}

func (m *MockOutsourceMechanicRepository) Register(ctx context.Context, mech entities.OutsourcedMechanic) (*entities.OutsourcedMechanic, error) {
	args := m.Called(ctx, mech)
	return get[*entities.OutsourcedMechanic](args, 0), args.Error(1)
}

func (m *MockOutsourceMechanicRepository) Find(ctx context.Context, ticketNumber, mechanicName string) (*entities.OutsourcedMechanic, error) {
	args := m.Called(ctx, ticketNumber, mechanicName)
	return get[*entities.OutsourcedMechanic](args, 0), args.Error(1)
}

func (m *MockOutsourceMechanicRepository) ListByTicket(ctx context.Context, ticketNumber string) ([]entities.OutsourcedMechanic, error) {
	args := m.Called(ctx, ticketNumber)
	return get[[]entities.OutsourcedMechanic](args, 0), args.Error(1)
}

func (m *MockOutsourceMechanicRepository) AppendPayment(ctx context.Context, p entities.PaymentInstallment) (*entities.PaymentInstallment, error) {
	args := m.Called(ctx, p)
	return get[*entities.PaymentInstallment](args, 0), args.Error(1)
}

func (m *MockOutsourceMechanicRepository) ListPayments(ctx context.Context, ticketNumber string) ([]entities.PaymentInstallment, error) {
	args := m.Called(ctx, ticketNumber)
	return get[[]entities.PaymentInstallment](args, 0), args.Error(1)
}
