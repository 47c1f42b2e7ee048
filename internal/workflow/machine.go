package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var ErrIllegalTransition = errors.New("недопустимый переход статуса")

type TicketType string

const (
	TicketTypeService   TicketType = "service"
	TicketTypeInsurance TicketType = "insurance"
)

// NormalizeType: всё, что не страховая заявка, считается обычным сервисом.
func NormalizeType(raw string) TicketType {
	if strings.EqualFold(strings.TrimSpace(raw), string(TicketTypeInsurance)) {
		return TicketTypeInsurance
	}
	return TicketTypeService
}

// IllegalTransitionError несет исходный и целевой статусы.
type IllegalTransitionError struct {
	From Status
	To   Status
	Type TicketType
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s (тип %s)", ErrIllegalTransition, e.From, e.To, e.Type)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// Общая часть графа. cancelled добавляется отдельно для всех нетерминальных статусов.
var commonEdges = map[Status][]Status{
	StatusPending:            {StatusAssigned},
	StatusAssigned:           {StatusInProgress},
	StatusInProgress:         {StatusReadyForInspection},
	StatusReadyForInspection: {StatusInspection},
	StatusInspection:         {StatusSuccessfulInspection, StatusInspectionFailed},
	StatusInspectionFailed:   {StatusInProgress},
	StatusAwaitingBill:       {StatusCompleted},
}

var serviceEdges = map[Status][]Status{
	StatusSuccessfulInspection: {StatusAwaitingBill},
}

var insuranceEdges = map[Status][]Status{
	StatusSuccessfulInspection: {StatusAwaitingSurvey},
	StatusAwaitingSurvey:       {StatusAwaitingSalvageForm},
	StatusAwaitingSalvageForm:  {StatusSurveyComplete},
	StatusSurveyComplete:       {StatusPaymentRequested},
	StatusPaymentRequested:     {StatusAwaitingBill},
}

// Machine - граф переходов. Нулевое значение не используется, берите Default.
type Machine struct {
	edges map[TicketType]map[Status][]Status
}

var Default = NewMachine()

func NewMachine() *Machine {
	build := func(specific map[Status][]Status) map[Status][]Status {
		out := make(map[Status][]Status, len(commonEdges)+len(specific))
		for from, to := range commonEdges {
			out[from] = append([]Status(nil), to...)
		}
		for from, to := range specific {
			out[from] = append(out[from], to...)
		}
		return out
	}
	return &Machine{edges: map[TicketType]map[Status][]Status{
		TicketTypeService:   build(serviceEdges),
		TicketTypeInsurance: build(insuranceEdges),
	}}
}

// Next возвращает все статусы, в которые можно перейти из from.
func (m *Machine) Next(from Status, t TicketType) []Status {
	if from.IsTerminal() {
		return nil
	}
	if t != TicketTypeInsurance {
		t = TicketTypeService
	}
	next := append([]Status(nil), m.edges[t][from]...)
	return append(next, StatusCancelled)
}

func (m *Machine) CanTransition(from, to Status, t TicketType) bool {
	for _, s := range m.Next(from, t) {
		if s == to {
			return true
		}
	}
	return false
}

// Transition проверяет переход и возвращает *IllegalTransitionError, если он запрещен.
func (m *Machine) Transition(from, to Status, t TicketType) error {
	if !m.CanTransition(from, to, t) {
		return &IllegalTransitionError{From: from, To: to, Type: t}
	}
	return nil
}
