package workflow

// View - именованный срез заявок. Состав статусов вычисляется из предиката,
// отдельных списков статусов по эндпоинтам нет.
type View struct {
	Name        string
	Description string
	include     func(Status) bool
}

func (v View) Includes(s Status) bool {
	return v.include(s)
}

// Statuses - список включенных канонических статусов в каноническом порядке.
func (v View) Statuses() []Status {
	out := make([]Status, 0, len(allStatuses))
	for _, s := range allStatuses {
		if v.include(s) {
			out = append(out, s)
		}
	}
	return out
}

// Unfiltered сообщает, что представлению не нужен фильтр по статусу.
func (v View) Unfiltered() bool {
	return v.Name == ViewAll
}

const (
	ViewActive            = "active"
	ViewInspectionQueue   = "inspection-queue"
	ViewInsurancePipeline = "insurance-pipeline"
	ViewBilling           = "billing"
	ViewRework            = "rework"
	ViewClosed            = "closed"
	ViewAll               = "all"
)

func oneOf(statuses ...Status) func(Status) bool {
	return func(s Status) bool {
		for _, x := range statuses {
			if x == s {
				return true
			}
		}
		return false
	}
}

var views = []View{
	{
		Name:        ViewActive,
		Description: "Все открытые заявки: любой нетерминальный статус",
		include:     func(s Status) bool { return !s.IsTerminal() },
	},
	{
		Name:        ViewInspectionQueue,
		Description: "Ожидают проверки или проверяются",
		include:     oneOf(StatusReadyForInspection, StatusInspection),
	},
	{
		Name:        ViewInsurancePipeline,
		Description: "Страховые заявки после успешной проверки до запроса оплаты",
		include:     oneOf(StatusAwaitingSurvey, StatusAwaitingSalvageForm, StatusSurveyComplete, StatusPaymentRequested),
	},
	{
		Name:        ViewBilling,
		Description: "Ожидают выставления счета",
		include:     oneOf(StatusAwaitingBill),
	},
	{
		Name:        ViewRework,
		Description: "Не прошли проверку",
		include:     oneOf(StatusInspectionFailed),
	},
	{
		Name:        ViewClosed,
		Description: "Завершенные и отмененные",
		include:     Status.IsTerminal,
	},
	{
		Name:        ViewAll,
		Description: "Все заявки",
		include:     func(Status) bool { return true },
	},
}

func Views() []View {
	out := make([]View, len(views))
	copy(out, views)
	return out
}

// LookupView ищет представление по имени; пустое имя означает active.
func LookupView(name string) (View, bool) {
	if name == "" {
		name = ViewActive
	}
	for _, v := range views {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}
