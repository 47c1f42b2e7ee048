package listeners

import (
	"context"

	"go.uber.org/zap"

	"ticket-system/internal/events"
	"ticket-system/pkg/eventbus"
)

// TicketListener пишет в журнал события заявок: отказы побочных шагов создания
// и смены статусов.
type TicketListener struct {
	logger *zap.Logger
}

func NewTicketListener(logger *zap.Logger) *TicketListener {
	return &TicketListener{logger: logger}
}

func (l *TicketListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.TicketSideEffectFailedName, l.handleSideEffectFailed)
	bus.Subscribe(events.TicketStatusChangedName, l.handleStatusChanged)
	l.logger.Info("TicketListener подписан на события заявок")
}

func (l *TicketListener) handleSideEffectFailed(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.TicketSideEffectFailedEvent)
	if !ok {
		return nil
	}
	l.logger.Warn("Побочный шаг создания заявки не выполнен",
		zap.String("ticket_number", e.TicketNumber),
		zap.String("step", e.Step),
		zap.String("request_id", e.RequestID),
		zap.Time("occurred_at", e.OccurredAt),
		zap.Error(e.Err),
	)
	return nil
}

func (l *TicketListener) handleStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.TicketStatusChangedEvent)
	if !ok {
		return nil
	}
	l.logger.Info("Статус заявки изменен",
		zap.String("ticket_number", e.TicketNumber),
		zap.String("from", e.From),
		zap.String("to", e.To),
		zap.String("actor", e.Actor),
		zap.String("request_id", e.RequestID),
	)
	return nil
}
