package domain

// Status — статус жизненного цикла заказа.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// validNext — допустимые переходы статуса.
// Отмена возможна только до отгрузки.
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseStatus — (Status, true) для известного значения, иначе ("", false).
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, known := validNext[st]
	return st, known
}

// CanTransition — допустим ли переход from → to.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
