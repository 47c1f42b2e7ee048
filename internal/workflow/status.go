// Package workflow описывает единый словарь статусов заявки и допустимые переходы между ними.
package workflow

import (
	"sort"
	"strings"
)

type Status string

const (
	StatusPending              Status = "pending"
	StatusAssigned             Status = "assigned"
	StatusInProgress           Status = "in-progress"
	StatusReadyForInspection   Status = "ready-for-inspection"
	StatusInspection           Status = "inspection"
	StatusSuccessfulInspection Status = "successful-inspection"
	StatusInspectionFailed     Status = "inspection-failed"
	StatusAwaitingSurvey       Status = "awaiting-survey"
	StatusAwaitingSalvageForm  Status = "awaiting-salvage-form"
	StatusSurveyComplete       Status = "survey-complete"
	StatusPaymentRequested     Status = "payment-requested"
	StatusAwaitingBill         Status = "awaiting-bill"
	StatusCompleted            Status = "completed"
	StatusCancelled            Status = "cancelled"
)

// allStatuses - канонический порядок, в нем же статусы отдаются клиенту.
var allStatuses = []Status{
	StatusPending,
	StatusAssigned,
	StatusInProgress,
	StatusReadyForInspection,
	StatusInspection,
	StatusSuccessfulInspection,
	StatusInspectionFailed,
	StatusAwaitingSurvey,
	StatusAwaitingSalvageForm,
	StatusSurveyComplete,
	StatusPaymentRequested,
	StatusAwaitingBill,
	StatusCompleted,
	StatusCancelled,
}

// aliases - старые формулировки статусов, встречающиеся в данных.
// Ключи хранятся уже в нормализованной форме (см. Key).
var aliases = map[string]Status{
	"open":              StatusPending,
	"new":               StatusPending,
	"waiting":           StatusPending,
	"in-service":        StatusInProgress,
	"working":           StatusInProgress,
	"started":           StatusInProgress,
	"ready":             StatusReadyForInspection,
	"ready-to-inspect":  StatusReadyForInspection,
	"under-inspection":  StatusInspection,
	"inspecting":        StatusInspection,
	"passed":            StatusSuccessfulInspection,
	"inspection-passed": StatusSuccessfulInspection,
	"successful":        StatusSuccessfulInspection,
	"failed":            StatusInspectionFailed,
	"failed-inspection": StatusInspectionFailed,
	"survey-pending":    StatusAwaitingSurvey,
	"salvage-form":      StatusAwaitingSalvageForm,
	"survey-completed":  StatusSurveyComplete,
	"payment-request":   StatusPaymentRequested,
	"bill-pending":      StatusAwaitingBill,
	"billing":           StatusAwaitingBill,
	"done":              StatusCompleted,
	"closed":            StatusCompleted,
	"complete":          StatusCompleted,
	"canceled":          StatusCancelled,
	"rejected":          StatusCancelled,
}

var canonical = func() map[Status]struct{} {
	m := make(map[Status]struct{}, len(allStatuses))
	for _, s := range allStatuses {
		m[s] = struct{}{}
	}
	return m
}()

// KeySQL повторяет Key на стороне PostgreSQL. Используется для фильтрации по представлениям.
const KeySQL = `btrim(lower(regexp_replace(%s, '[[:space:]_-]+', '-', 'g')), '-')`

// Key приводит строку к нижнему регистру, а пробелы, '_' и '-' (в любом количестве)
// заменяет одним дефисом.
func Key(raw string) string {
	replaced := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, strings.ToLower(raw))
	return strings.Join(strings.Fields(replaced), "-")
}

// Normalize всегда возвращает детерминированный статус. Неизвестные значения
// возвращаются в нормализованной форме, а не отбрасываются.
func Normalize(raw string) Status {
	k := Key(raw)
	if k == "" {
		return StatusPending
	}
	if _, ok := canonical[Status(k)]; ok {
		return Status(k)
	}
	if s, ok := aliases[k]; ok {
		return s
	}
	return Status(k)
}

func (s Status) String() string { return string(s) }

// IsKnown сообщает, входит ли статус в канонический набор.
func (s Status) IsKnown() bool {
	_, ok := canonical[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// RawKeys возвращает все нормализованные ключи, которые Normalize сводит к одному из
// переданных статусов. Список отсортирован, чтобы SQL был стабильным.
func RawKeys(statuses []Status) []string {
	want := make(map[Status]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	keys := make([]string, 0, len(statuses)*2)
	for s := range want {
		keys = append(keys, string(s))
	}
	for k, s := range aliases {
		if _, ok := want[s]; ok {
			keys = append(keys, k)
		}
	}
	if _, ok := want[StatusPending]; ok {
		keys = append(keys, "")
	}
	sort.Strings(keys)
	return keys
}
