package seeders

var toolsData = []struct {
	Name     string
	Category string
	Quantity int
}{
	// --- Подъемное ---
	{Name: "Домкрат подкатной 3т", Category: "Подъемное оборудование", Quantity: 4},
	{Name: "Подставка страховочная", Category: "Подъемное оборудование", Quantity: 8},
	{Name: "Кран гаражный", Category: "Подъемное оборудование", Quantity: 1},

	// --- Ручной инструмент ---
	{Name: "Набор головок 1/2", Category: "Ручной инструмент", Quantity: 6},
	{Name: "Ключ динамометрический", Category: "Ручной инструмент", Quantity: 3},
	{Name: "Съемник шаровых опор", Category: "Ручной инструмент", Quantity: 2},

	// --- Диагностика ---
	{Name: "Сканер OBD-II", Category: "Диагностика", Quantity: 2},
	{Name: "Мультиметр", Category: "Диагностика", Quantity: 5},
	{Name: "Компрессометр", Category: "Диагностика", Quantity: 1},
}

var proformaStatuses = []string{"Accepted", "Accepted", "Accepted", "Draft", "Sent", "Rejected"}
