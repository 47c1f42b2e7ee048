package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/repositories"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/utils"
)

type ToolServiceInterface interface {
	AssignTool(ctx context.Context, toolID int64, in dto.AssignToolDTO) (*dto.ToolOperationResultDTO, error)
	ReturnTool(ctx context.Context, assignmentID int64, in dto.ReturnToolDTO) (*dto.ToolOperationResultDTO, error)
}

type ToolService struct {
	txManager repositories.TxManagerInterface
	tickets   repositories.TicketRepositoryInterface
	tools     repositories.ToolRepositoryInterface
	logger    *zap.Logger
}

func NewToolService(
	txManager repositories.TxManagerInterface,
	tickets repositories.TicketRepositoryInterface,
	tools repositories.ToolRepositoryInterface,
	logger *zap.Logger,
) ToolServiceInterface {
	return &ToolService{txManager: txManager, tickets: tickets, tools: tools, logger: logger}
}

// AssignTool выдает инструмент по заявке. Проверка остатка и списание - один условный UPDATE,
// поэтому параллельные выдачи не уводят остаток в минус.
func (s *ToolService) AssignTool(ctx context.Context, toolID int64, in dto.AssignToolDTO) (*dto.ToolOperationResultDTO, error) {
	logger := utils.LoggerFromCtx(ctx, s.logger)
	if in.Quantity <= 0 {
		return nil, apperrors.NewInvalidInputError("количество должно быть больше нуля")
	}

	var (
		tool       *entities.Tool
		assignment *entities.ToolAssignment
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		ticket, err := s.tickets.FindByNumber(ctx, tx, in.TicketNumber)
		if err != nil {
			return err
		}
		if ticket.Status.IsTerminal() {
			return apperrors.NewInvalidInputError("заявка %s закрыта, выдача инструмента невозможна", ticket.TicketNumber)
		}

		tool, err = s.tools.Reserve(ctx, tx, toolID, in.Quantity)
		if err != nil {
			return err
		}
		assignment, err = s.tools.CreateAssignment(ctx, tx, entities.ToolAssignment{
			ToolID:           tool.ID,
			TicketNumber:     ticket.TicketNumber,
			ToolName:         tool.Name,
			AssignedQuantity: in.Quantity,
			AssignedBy:       in.AssignedBy,
			Status:           entities.ToolAssignmentInUse,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientToolQuantity) {
			logger.Warn("Отказ в выдаче инструмента",
				zap.Int64("tool_id", toolID),
				zap.Int("quantity", in.Quantity),
				zap.String("ticket_number", in.TicketNumber),
			)
		}
		return nil, err
	}

	logger.Info("Инструмент выдан",
		zap.Int64("tool_id", tool.ID),
		zap.Int64("assignment_id", assignment.ID),
		zap.Int("quantity", in.Quantity),
		zap.Int("available", tool.AvailableQuantity),
	)
	return &dto.ToolOperationResultDTO{
		Success:           true,
		Message:           fmt.Sprintf("Выдано %d шт. инструмента %q по заявке %s", in.Quantity, tool.Name, assignment.TicketNumber),
		AssignmentID:      assignment.ID,
		AvailableQuantity: utils.ToPtr(tool.AvailableQuantity),
	}, nil
}

// ReturnTool принимает полный или частичный возврат. Вернуть больше, чем выдано, нельзя.
func (s *ToolService) ReturnTool(ctx context.Context, assignmentID int64, in dto.ReturnToolDTO) (*dto.ToolOperationResultDTO, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.NewInvalidInputError("количество должно быть больше нуля")
	}

	var (
		tool       *entities.Tool
		assignment *entities.ToolAssignment
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.tools.FindAssignmentForUpdate(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if in.Quantity > current.Outstanding() {
			return fmt.Errorf("%w: на руках %d, возвращается %d", apperrors.ErrInvalidReturnQuantity, current.Outstanding(), in.Quantity)
		}

		assignment, err = s.tools.RegisterReturn(ctx, tx, assignmentID, in.Quantity)
		if err != nil {
			return err
		}
		tool, err = s.tools.Release(ctx, tx, current.ToolID, in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.LoggerFromCtx(ctx, s.logger).Info("Инструмент возвращен",
		zap.Int64("assignment_id", assignmentID),
		zap.Int("quantity", in.Quantity),
		zap.String("status", assignment.Status),
	)
	return &dto.ToolOperationResultDTO{
		Success:           true,
		Message:           fmt.Sprintf("Возвращено %d шт. инструмента %q", in.Quantity, assignment.ToolName),
		AssignmentID:      assignment.ID,
		AvailableQuantity: utils.ToPtr(tool.AvailableQuantity),
	}, nil
}
