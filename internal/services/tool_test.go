package services

import (
	"context"
	"fmt"
	"testing"

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

type toolFixture struct {
	svc     ToolServiceInterface
	tx      *mocks.TxManager
	tickets *mocks.MockTicketRepository
	tools   *mocks.MockToolRepository
}

func newToolFixture(t *testing.T) *toolFixture {
	f := &toolFixture{
		tx:      &mocks.TxManager{},
		tickets: mocks.NewMockTicketRepository(t),
		tools:   mocks.NewMockToolRepository(t),
	}
	f.svc = NewToolService(f.tx, f.tickets, f.tools, zap.NewNop())
	return f
}

// Выдача и частичный возврат: 5 на складе, выдали 3, вернули 2.
func TestAssignAndReturnTool(t *testing.T) {
	f := newToolFixture(t)
	f.tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").
		Return(&entities.Ticket{TicketNumber: "T-1", Status: workflow.StatusInProgress}, nil).Once()
	f.tools.On("Reserve", mock.Anything, mock.Anything, int64(3), 3).
		Return(&entities.Tool{ID: 3, Name: "Домкрат", TotalQuantity: 5, AvailableQuantity: 2}, nil).Once()
	f.tools.On("CreateAssignment", mock.Anything, mock.Anything, mock.MatchedBy(func(a entities.ToolAssignment) bool {
		return a.AssignedQuantity == 3 && a.Status == entities.ToolAssignmentInUse && a.ToolName == "Домкрат"
	})).Return(&entities.ToolAssignment{ID: 11, ToolID: 3, TicketNumber: "T-1", ToolName: "Домкрат", AssignedQuantity: 3, Status: entities.ToolAssignmentInUse}, nil).Once()

	res, err := f.svc.AssignTool(context.Background(), 3, dto.AssignToolDTO{TicketNumber: "T-1", Quantity: 3, AssignedBy: "Rustam"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(11), res.AssignmentID)
	require.NotNil(t, res.AvailableQuantity)
	assert.Equal(t, 2, *res.AvailableQuantity)

	f.tools.On("FindAssignmentForUpdate", mock.Anything, mock.Anything, int64(11)).
		Return(&entities.ToolAssignment{ID: 11, ToolID: 3, AssignedQuantity: 3, Status: entities.ToolAssignmentInUse}, nil).Once()
	f.tools.On("RegisterReturn", mock.Anything, mock.Anything, int64(11), 2).
		Return(&entities.ToolAssignment{ID: 11, ToolID: 3, ToolName: "Домкрат", AssignedQuantity: 3, ReturnedQuantity: 2, Status: entities.ToolAssignmentInUse}, nil).Once()
	f.tools.On("Release", mock.Anything, mock.Anything, int64(3), 2).
		Return(&entities.Tool{ID: 3, TotalQuantity: 5, AvailableQuantity: 4}, nil).Once()

	res, err = f.svc.ReturnTool(context.Background(), 11, dto.ReturnToolDTO{Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, *res.AvailableQuantity)
	assert.Equal(t, 2, f.tx.Calls)
}

func TestAssignTool_InsufficientQuantity(t *testing.T) {
	f := newToolFixture(t)
	f.tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").
		Return(&entities.Ticket{TicketNumber: "T-1", Status: workflow.StatusInProgress}, nil).Once()
	f.tools.On("Reserve", mock.Anything, mock.Anything, int64(3), 10).
		Return(nil, fmt.Errorf("%w: доступно 2", apperrors.ErrInsufficientToolQuantity)).Once()

	_, err := f.svc.AssignTool(context.Background(), 3, dto.AssignToolDTO{TicketNumber: "T-1", Quantity: 10, AssignedBy: "Rustam"})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientToolQuantity)
	f.tools.AssertNotCalled(t, "CreateAssignment", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignTool_ClosedTicket(t *testing.T) {
	f := newToolFixture(t)
	f.tickets.On("FindByNumber", mock.Anything, mock.Anything, "T-1").
		Return(&entities.Ticket{TicketNumber: "T-1", Status: workflow.StatusCompleted}, nil).Once()

	_, err := f.svc.AssignTool(context.Background(), 3, dto.AssignToolDTO{TicketNumber: "T-1", Quantity: 1, AssignedBy: "Rustam"})
	var iie *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &iie)
	f.tools.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReturnTool_MoreThanOutstanding(t *testing.T) {
	f := newToolFixture(t)
	f.tools.On("FindAssignmentForUpdate", mock.Anything, mock.Anything, int64(11)).
		Return(&entities.ToolAssignment{ID: 11, ToolID: 3, AssignedQuantity: 3, ReturnedQuantity: 2}, nil).Once()

	_, err := f.svc.ReturnTool(context.Background(), 11, dto.ReturnToolDTO{Quantity: 2})
	assert.ErrorIs(t, err, apperrors.ErrInvalidReturnQuantity)
	f.tools.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestToolOperations_NonPositiveQuantity(t *testing.T) {
	f := newToolFixture(t)
	var iie *apperrors.InvalidInputError

	_, err := f.svc.AssignTool(context.Background(), 3, dto.AssignToolDTO{TicketNumber: "T-1", Quantity: 0})
	assert.ErrorAs(t, err, &iie)
	_, err = f.svc.ReturnTool(context.Background(), 11, dto.ReturnToolDTO{Quantity: -1})
	assert.ErrorAs(t, err, &iie)
	assert.Zero(t, f.tx.Calls)
}
