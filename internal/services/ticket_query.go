package services

import (
	"context"

	"go.uber.org/zap"

	"ticket-system/internal/dto"
	"ticket-system/internal/entities"
	"ticket-system/internal/workflow"
	apperrors "ticket-system/pkg/errors"
	"ticket-system/pkg/types"
	"ticket-system/pkg/utils"
)

// Политика агрегации по эндпоинтам
var (
	listAggregation   = AggregateOptions{Projection: ProjectionSummary, Mode: FailSoft}
	detailAggregation = AggregateOptions{Projection: ProjectionFull, Mode: FailSoft}
	exportAggregation = AggregateOptions{Projection: ProjectionFull, Mode: FailHard}
)

type ticketPage struct {
	Items []dto.AggregatedTicketDTO `json:"items"`
	Total uint64                    `json:"total"`
}

func lookupView(name string) (workflow.View, error) {
	view, ok := workflow.LookupView(name)
	if !ok {
		return workflow.View{}, apperrors.NewInvalidInputError("неизвестное представление: %s", name)
	}
	return view, nil
}

// ListTickets - страница представления в сокращенной проекции. Результат кешируется в Redis.
func (s *TicketService) ListTickets(ctx context.Context, viewName string, filter types.Filter) ([]dto.AggregatedTicketDTO, uint64, error) {
	view, err := lookupView(viewName)
	if err != nil {
		return nil, 0, err
	}

	key, cacheable := s.cache.key(ctx, view.Name, filter)
	if cacheable {
		var cached ticketPage
		if s.cache.get(ctx, key, &cached) {
			return cached.Items, cached.Total, nil
		}
	}

	tickets, total, err := s.repos.Tickets.List(ctx, view, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.aggregation.Aggregate(ctx, tickets, listAggregation)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		s.cache.set(ctx, key, ticketPage{Items: items, Total: total})
	}
	return items, total, nil
}

// GetTicket - карточка заявки со всеми дочерними записями и ссылкой на фото автомобиля.
func (s *TicketService) GetTicket(ctx context.Context, ticketNumber string) (*dto.AggregatedTicketDTO, error) {
	ticket, err := s.repos.Tickets.FindByNumber(ctx, nil, ticketNumber)
	if err != nil {
		return nil, err
	}
	items, err := s.aggregation.Aggregate(ctx, []entities.Ticket{*ticket}, detailAggregation)
	if err != nil {
		return nil, err
	}
	result := items[0]
	result.VehicleImageURL = s.vehicleImage(ctx, ticket)
	return &result, nil
}

func (s *TicketService) vehicleImage(ctx context.Context, ticket *entities.Ticket) string {
	if s.images == nil {
		return ""
	}
	var stored string
	if ticket.VehicleID.Valid {
		vehicle, err := s.repos.Vehicles.FindByID(ctx, ticket.VehicleID.Int64)
		if err != nil {
			utils.LoggerFromCtx(ctx, s.logger).Warn("Автомобиль заявки не найден",
				zap.String("ticket_number", ticket.TicketNumber),
				zap.Int64("vehicle_id", ticket.VehicleID.Int64),
				zap.Error(err),
			)
		} else {
			stored = vehicle.ImageURL.String
		}
	}
	return s.images.Resolve(ctx, stored)
}

// ExportTickets выгружает представление целиком. Любая ошибка выборки прерывает выгрузку,
// чтобы в файл не попали неполные данные.
func (s *TicketService) ExportTickets(ctx context.Context, viewName string, filter types.Filter) ([]dto.AggregatedTicketDTO, error) {
	view, err := lookupView(viewName)
	if err != nil {
		return nil, err
	}
	filter.WithPagination = false

	tickets, _, err := s.repos.Tickets.List(ctx, view, filter)
	if err != nil {
		return nil, err
	}
	return s.aggregation.Aggregate(ctx, tickets, exportAggregation)
}
