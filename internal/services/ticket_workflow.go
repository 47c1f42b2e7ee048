package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/events"
	"ticket-system/internal/workflow"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/utils"
)

const MechanicAssignmentActive = "assigned"

type statusChange struct {
	ticketNumber string
	from         workflow.Status
	to           workflow.Status
	actor        string
}

// moveTo проверяет переход по графу, сохраняет новый статус и пишет запись в журнал работ.
func (s *TicketService) moveTo(ctx context.Context, tx pgx.Tx, ticket *entities.Ticket, to workflow.Status, actor, note string) (*entities.Ticket, statusChange, error) {
	change := statusChange{ticketNumber: ticket.TicketNumber, from: ticket.Status, to: to, actor: actor}
	if err := s.machine.Transition(ticket.Status, to, ticket.Type); err != nil {
		return nil, change, err
	}

	var completedAt *time.Time
	if to == workflow.StatusCompleted {
		now := s.now()
		completedAt = &now
	}
	updated, err := s.repos.Tickets.UpdateStatus(ctx, tx, ticket.TicketNumber, to, completedAt)
	if err != nil {
		return nil, change, err
	}

	if note == "" {
		note = fmt.Sprintf("Статус изменен: %s -> %s", ticket.Status, to)
	}
	_, err = s.repos.Children.CreateProgressLog(ctx, tx, entities.ProgressLog{
		TicketNumber: ticket.TicketNumber,
		Status:       null.StringFrom(string(to)),
		Description:  note,
		CreatedBy:    null.NewString(actor, actor != ""),
	})
	if err != nil {
		return nil, change, err
	}
	return updated, change, nil
}

// afterWrite вызывается после коммита: сбрасывает кеш списков и публикует смены статуса.
func (s *TicketService) afterWrite(ctx context.Context, changes ...statusChange) {
	s.cache.invalidate(ctx)
	logger := utils.LoggerFromCtx(ctx, s.logger)
	for _, c := range changes {
		logger.Info("Статус заявки изменен",
			zap.String("ticket_number", c.ticketNumber),
			zap.String("from", string(c.from)),
			zap.String("to", string(c.to)),
		)
		if s.publisher != nil {
			s.publisher.Publish(ctx, events.TicketStatusChangedEvent{
				TicketNumber: c.ticketNumber,
				From:         string(c.from),
				To:           string(c.to),
				Actor:        c.actor,
				RequestID:    utils.RequestIDFromCtx(ctx),
				OccurredAt:   s.now(),
			})
		}
	}
}

// TransitionStatus - явная смена статуса, в том числе отмена.
func (s *TicketService) TransitionStatus(ctx context.Context, ticketNumber string, in dto.TransitionTicketDTO) (*entities.Ticket, error) {
	target := workflow.Normalize(in.Status)
	if !target.IsKnown() {
		return nil, apperrors.NewInvalidInputError("неизвестный статус: %s", in.Status)
	}
	actor := utils.SafeDeref(in.Actor)

	var (
		updated *entities.Ticket
		change  statusChange
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		ticket, err := s.repos.Tickets.FindByNumberForUpdate(ctx, tx, ticketNumber)
		if err != nil {
			return err
		}
		updated, change, err = s.moveTo(ctx, tx, ticket, target, actor, utils.SafeDeref(in.Comment))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, change)
	return updated, nil
}

// AssignMechanic назначает механика. Заявка в pending при этом переходит в assigned,
// на остальных нетерминальных статусах назначение только добавляется.
func (s *TicketService) AssignMechanic(ctx context.Context, ticketNumber string, in dto.AssignMechanicDTO) (*dto.MechanicAssignmentResultDTO, error) {
	var (
		result  dto.MechanicAssignmentResultDTO
		changes []statusChange
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		ticket, err := s.repos.Tickets.FindByNumberForUpdate(ctx, tx, ticketNumber)
		if err != nil {
			return err
		}
		if ticket.Status.IsTerminal() {
			return &workflow.IllegalTransitionError{From: ticket.Status, To: workflow.StatusAssigned, Type: ticket.Type}
		}

		assignment, err := s.repos.Children.CreateMechanicAssignment(ctx, tx, entities.MechanicAssignment{
			TicketNumber: ticket.TicketNumber,
			MechanicID:   in.MechanicID,
			MechanicName: in.MechanicName,
			Status:       MechanicAssignmentActive,
		})
		if err != nil {
			return err
		}
		result.Assignment = *assignment

		if ticket.Status == workflow.StatusPending {
			updated, change, err := s.moveTo(ctx, tx, ticket, workflow.StatusAssigned, "",
				fmt.Sprintf("Назначен механик %s", in.MechanicName))
			if err != nil {
				return err
			}
			ticket = updated
			changes = append(changes, change)
		}
		result.Ticket = *ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, changes...)
	return &result, nil
}

// AddProgressLog добавляет запись в журнал работ. Статус заявки не меняется.
func (s *TicketService) AddProgressLog(ctx context.Context, ticketNumber string, in dto.CreateProgressLogDTO) (*entities.ProgressLog, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperrors.NewValidationError("description")
	}
	ticket, err := s.repos.Tickets.FindByNumber(ctx, nil, ticketNumber)
	if err != nil {
		return nil, err
	}

	entry := entities.ProgressLog{
		TicketNumber: ticket.TicketNumber,
		Description:  in.Description,
		CreatedBy:    utils.NullStringFromPtr(in.CreatedBy),
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		entry.Status = null.StringFrom(string(workflow.Normalize(*in.Status)))
	}

	created, err := s.repos.Children.CreateProgressLog(ctx, nil, entry)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx)
	return created, nil
}

// RecordInspection сохраняет результат проверки. Заявка из ready-for-inspection сначала
// переводится в inspection, затем по исходу в successful-inspection или inspection-failed.
// Нераспознанный исход оставляет заявку на проверке.
func (s *TicketService) RecordInspection(ctx context.Context, ticketNumber string, in dto.CreateInspectionDTO) (*dto.InspectionResultDTO, error) {
	passed, known := inspectionPassed(in.InspectionStatus)

	var (
		result  dto.InspectionResultDTO
		changes []statusChange
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		ticket, err := s.repos.Tickets.FindByNumberForUpdate(ctx, tx, ticketNumber)
		if err != nil {
			return err
		}

		if ticket.Status == workflow.StatusReadyForInspection {
			updated, change, err := s.moveTo(ctx, tx, ticket, workflow.StatusInspection, "", "")
			if err != nil {
				return err
			}
			ticket = updated
			changes = append(changes, change)
		}
		if ticket.Status != workflow.StatusInspection {
			return &workflow.IllegalTransitionError{From: ticket.Status, To: workflow.StatusInspection, Type: ticket.Type}
		}

		saved, err := s.repos.Children.CreateInspection(ctx, tx, inspectionFromDTO(ticket.TicketNumber, in))
		if err != nil {
			return err
		}
		result.Inspection = ProjectInspection(*saved)

		if known {
			outcome := workflow.StatusInspectionFailed
			if passed {
				outcome = workflow.StatusSuccessfulInspection
			}
			updated, change, err := s.moveTo(ctx, tx, ticket, outcome, "", "")
			if err != nil {
				return err
			}
			ticket = updated
			changes = append(changes, change)
		}
		result.Ticket = *ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, changes...)
	return &result, nil
}

// checklistKey: "Oil Level", "oil-level" и "oil_level" - один и тот же пункт.
func checklistKey(raw string) string {
	return strings.ReplaceAll(workflow.Key(raw), "-", "_")
}

func inspectionFromDTO(ticketNumber string, in dto.CreateInspectionDTO) entities.Inspection {
	i := entities.Inspection{
		TicketNumber:       ticketNumber,
		MainIssueResolved:  utils.NullStringFromPtr(in.MainIssueResolved),
		ReassemblyVerified: utils.NullStringFromPtr(in.ReassemblyVerified),
		GeneralCondition:   utils.NullStringFromPtr(in.GeneralCondition),
		Notes:              utils.NullStringFromPtr(in.Notes),
		InspectionStatus:   null.StringFrom(in.InspectionStatus),
	}
	items := map[string]*null.String{
		"oil_level":            &i.OilLevel,
		"oil_condition":        &i.OilCondition,
		"brake_fluid":          &i.BrakeFluid,
		"coolant":              &i.Coolant,
		"power_steering_fluid": &i.PowerSteeringFluid,
		"tire_pressure":        &i.TirePressure,
		"tire_tread":           &i.TireTread,
		"lights":               &i.Lights,
		"battery":              &i.Battery,
		"wipers":               &i.Wipers,
	}
	for k, v := range in.Checklist {
		if field, ok := items[checklistKey(k)]; ok && strings.TrimSpace(v) != "" {
			*field = null.StringFrom(v)
		}
	}
	return i
}
