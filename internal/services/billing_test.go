package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/repositories/mocks"
	"ticket-system/internal/workflow"
	apperrors "ticket-system/pkg/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeBill(t *testing.T) {
	agg := dto.AggregatedTicketDTO{
		TicketNumber: "T-1",
		OrderedParts: []entities.OrderedPart{
			{Name: "Колодки", Price: dec("120.50"), Quantity: 2},
			{Name: "Фильтр", Price: dec("15"), Quantity: 1},
		},
		OutsourceStock: []entities.OutsourceStockRequest{
			{Name: "Фара", Price: dec("300"), Quantity: 1, Status: entities.OutsourceStockReceived},
			{Name: "Бампер", Price: dec("900"), Quantity: 1, Status: "Requested"},
		},
		OutsourcedMechanics: []entities.OutsourcedMechanic{
			{MechanicName: "Ali", AgreedPayment: dec("200")},
			{MechanicName: "Vali", AgreedPayment: dec("50.25")},
		},
	}

	bill := ComputeBill(agg, dec("100"), dec("15"))

	assert.True(t, dec("256").Equal(bill.PartsCost), bill.PartsCost.String())
	assert.True(t, dec("300").Equal(bill.OutsourcedPartsCost), "заказанные, но не полученные запчасти не учитываются")
	assert.True(t, dec("250.25").Equal(bill.OutsourcedLaborCost))
	assert.True(t, dec("906.25").Equal(bill.Subtotal), bill.Subtotal.String())
	assert.True(t, dec("135.94").Equal(bill.TaxAmount), bill.TaxAmount.String())
	assert.True(t, dec("1042.19").Equal(bill.FinalTotal), bill.FinalTotal.String())
	assert.Equal(t, entities.BillStatusFinalized, bill.Status)
	assert.True(t, bill.Subtotal.Add(bill.TaxAmount).Equal(bill.FinalTotal))
}

func TestComputeBill_EmptyTicket(t *testing.T) {
	bill := ComputeBill(dto.AggregatedTicketDTO{TicketNumber: "T-2"}, decimal.Zero, dec("12"))
	assert.True(t, bill.Subtotal.IsZero())
	assert.True(t, bill.TaxAmount.IsZero())
	assert.True(t, bill.FinalTotal.IsZero())
}

func TestFinalizeBill(t *testing.T) {
	in := dto.FinalizeBillDTO{LaborCost: dec("100"), TaxRate: dec("10")}

	t.Run("счет сохраняется", func(t *testing.T) {
		tickets := mocks.NewMockTicketRepository(t)
		bills := mocks.NewMockBillRepository(t)
		agg := &stubAggregation{}
		ticket := &entities.Ticket{TicketNumber: "T-1", Status: workflow.StatusAwaitingBill, ProformaID: null.Int64From(4), CreatedAt: fixedNow}
		tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").Return(ticket, nil).Once()
		bills.On("Upsert", mock.Anything, mock.Anything, mock.MatchedBy(func(b entities.Bill) bool {
			return b.ProformaID.Int64 == 4 &&
				b.Subtotal.Equal(dec("100")) &&
				len(b.BillNumber) == len("BILL-20240315-")+8 &&
				b.BillNumber[:len("BILL-20240315-")] == "BILL-20240315-"
		})).Return(&entities.Bill{ID: 1, BillNumber: "BILL-20240315-ABCDEF12", FinalTotal: dec("110")}, nil).Once()

		svc := NewBillingService(tickets, bills, agg, zap.NewNop())
		bill, err := svc.FinalizeBill(context.Background(), "T-1", in)
		require.NoError(t, err)
		assert.Equal(t, "BILL-20240315-ABCDEF12", bill.BillNumber)
		require.Len(t, agg.calls, 1)
		assert.Equal(t, FailHard, agg.calls[0].Mode)
		assert.Equal(t, ProjectionFull, agg.calls[0].Projection)
	})

	t.Run("ошибка выборки прерывает расчет", func(t *testing.T) {
		tickets := mocks.NewMockTicketRepository(t)
		bills := mocks.NewMockBillRepository(t)
		agg := &stubAggregation{err: &ChildFetchError{Kind: KindOutsourceStock, Err: errors.New("timeout")}}
		tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").
			Return(&entities.Ticket{TicketNumber: "T-1", Status: workflow.StatusAwaitingBill}, nil).Once()

		svc := NewBillingService(tickets, bills, agg, zap.NewNop())
		_, err := svc.FinalizeBill(context.Background(), "T-1", in)
		var fetchErr *ChildFetchError
		require.ErrorAs(t, err, &fetchErr)
		bills.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("отмененная заявка", func(t *testing.T) {
		tickets := mocks.NewMockTicketRepository(t)
		tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").
			Return(&entities.Ticket{TicketNumber: "T-1", Status: workflow.StatusCancelled}, nil).Once()

		svc := NewBillingService(tickets, mocks.NewMockBillRepository(t), &stubAggregation{}, zap.NewNop())
		_, err := svc.FinalizeBill(context.Background(), "T-1", in)
		var iie *apperrors.InvalidInputError
		assert.ErrorAs(t, err, &iie)
	})

	t.Run("отрицательная ставка", func(t *testing.T) {
		svc := NewBillingService(mocks.NewMockTicketRepository(t), mocks.NewMockBillRepository(t), &stubAggregation{}, zap.NewNop())
		_, err := svc.FinalizeBill(context.Background(), "T-1", dto.FinalizeBillDTO{LaborCost: dec("1"), TaxRate: dec("-1")})
		var iie *apperrors.InvalidInputError
		assert.ErrorAs(t, err, &iie)
	})
}

func TestNewBillNumber(t *testing.T) {
	a := newBillNumber(fixedNow)
	b := newBillNumber(fixedNow)
	assert.Regexp(t, `^BILL-20240315-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b)
}
