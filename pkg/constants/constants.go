// pkg/constants/constants.go
package constants

//============== CACHE KEYS ==============

const (
	// Версия кеша списков. Увеличивается при любой записи в заявку,
	// старые ключи просто истекают по TTL.
	// Формат: tickets:list:version -> int
	CacheKeyTicketListVersion = "tickets:list:version"

	// Закешированная страница представления.
	// Формат: tickets:list:v<version>:<view>:<hash параметров> -> JSON
	CacheKeyTicketList = "tickets:list:v%d:%s:%s"
)

//============== TICKET NUMBERS ==============

// Номер заявки: PREFIX-YYYYMMDD-NNNN
const (
	TicketNumberDateLayout = "20060102"
	TicketNumberFormat     = "%s-%s-%04d"
)

// Номер счета: BILL-YYYYMMDD-<8 символов uuid>
const BillNumberFormat = "BILL-%s-%s"
