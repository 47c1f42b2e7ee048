package events

import "time"

const (
	TicketSideEffectFailedName = "ticket.side_effect.failed"
	TicketStatusChangedName    = "ticket.status.changed"
)

// TicketSideEffectFailedEvent - побочный шаг создания заявки (страховка, профиль клиента,
// счет) не выполнен. Сама заявка при этом уже сохранена.
type TicketSideEffectFailedEvent struct {
	TicketNumber string
	Step         string
	Err          error
	RequestID    string
	OccurredAt   time.Time
}

func (e TicketSideEffectFailedEvent) Name() string {
	return TicketSideEffectFailedName
}

type TicketStatusChangedEvent struct {
	TicketNumber string
	From         string
	To           string
	Actor        string
	RequestID    string
	OccurredAt   time.Time
}

func (e TicketStatusChangedEvent) Name() string {
	return TicketStatusChangedName
}
