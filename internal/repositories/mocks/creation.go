package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"ticket-system/internal/entities"
	"ticket-system/pkg/types"
)

type MockCustomerRepository struct{ mock.Mock }

func NewMockCustomerRepository(t *testing.T) *MockCustomerRepository {
	return register(t, &MockCustomerRepository{})
}

func (m *MockCustomerRepository) UpsertIndividual(ctx context.Context, tx pgx.Tx, c entities.IndividualCustomer) error {
	return m.Called(ctx, tx, c).Error(0)
}

func (m *MockCustomerRepository) UpsertCompany(ctx context.Context, tx pgx.Tx, c entities.CompanyCustomer) error {
	return m.Called(ctx, tx, c).Error(0)
}

type MockVehicleRepository struct{ mock.Mock }

func NewMockVehicleRepository(t *testing.T) *MockVehicleRepository {
	return register(t, &MockVehicleRepository{})
}

func (m *MockVehicleRepository) Ensure(ctx context.Context, tx pgx.Tx, v entities.Vehicle) (int64, error) {
	args := m.Called(ctx, tx, v)
	return get[int64](args, 0), args.Error(1)
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id int64) (*entities.Vehicle, error) {
	args := m.Called(ctx, id)
	return get[*entities.Vehicle](args, 0), args.Error(1)
}

type MockInsuranceRepository struct{ mock.Mock }

func NewMockInsuranceRepository(t *testing.T) *MockInsuranceRepository {
	return register(t, &MockInsuranceRepository{})
}

func (m *MockInsuranceRepository) Upsert(ctx context.Context, tx pgx.Tx, rec entities.InsuranceRecord) (*entities.InsuranceRecord, error) {
	args := m.Called(ctx, tx, rec)
	return get[*entities.InsuranceRecord](args, 0), args.Error(1)
}

type MockProformaRepository struct{ mock.Mock }

func NewMockProformaRepository(t *testing.T) *MockProformaRepository {
	return register(t, &MockProformaRepository{})
}

func (m *MockProformaRepository) FindByID(ctx context.Context, tx pgx.Tx, id int64) (*entities.Proforma, error) {
	args := m.Called(ctx, tx, id)
	return get[*entities.Proforma](args, 0), args.Error(1)
}

func (m *MockProformaRepository) ListAccepted(ctx context.Context, filter types.Filter) ([]entities.Proforma, uint64, error) {
	args := m.Called(ctx, filter)
	return get[[]entities.Proforma](args, 0), get[uint64](args, 1), args.Error(2)
}

type MockBillRepository struct{ mock.Mock }

func NewMockBillRepository(t *testing.T) *MockBillRepository {
	return register(t, &MockBillRepository{})
}

func (m *MockBillRepository) Upsert(ctx context.Context, tx pgx.Tx, b entities.Bill) (*entities.Bill, error) {
	args := m.Called(ctx, tx, b)
	return get[*entities.Bill](args, 0), args.Error(1)
}

func (m *MockBillRepository) FindByTicket(ctx context.Context, ticketNumber string) (*entities.Bill, error) {
	args := m.Called(ctx, ticketNumber)
	return get[*entities.Bill](args, 0), args.Error(1)
}

type MockCacheRepository struct{ mock.Mock }

func NewMockCacheRepository(t *testing.T) *MockCacheRepository {
	return register(t, &MockCacheRepository{})
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCacheRepository) Del(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockCacheRepository) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return get[int64](args, 0), args.Error(1)
}
