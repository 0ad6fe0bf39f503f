package btcpay

// InvoiceStatus - локальное представление статуса инвойса.
// Статусы процессинга парсятся на границе клиента, чтобы остальной код
// не зависел от строкового словаря BTCPay.
type InvoiceStatus int

const (
	StatusUnknown InvoiceStatus = iota
	StatusNew
	StatusProcessing
	StatusSettled
	StatusExpired
)

// ParseInvoiceStatus преобразует строку статуса BTCPay в локальный статус.
func ParseInvoiceStatus(raw string) InvoiceStatus {
	switch raw {
	case "New":
		return StatusNew
	case "Processing":
		return StatusProcessing
	case "Settled":
		return StatusSettled
	case "Expired":
		return StatusExpired
	default:
		return StatusUnknown
	}
}

// String возвращает строковое представление статуса.
func (s InvoiceStatus) String() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusProcessing:
		return "Processing"
	case StatusSettled:
		return "Settled"
	case StatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// IsSettledEquivalent сообщает, считается ли статус оплатой.
// Processing приравнивается к Settled, чтобы не ждать полного подтверждения
// для медленных сетей.
func (s InvoiceStatus) IsSettledEquivalent() bool {
	return s == StatusSettled || s == StatusProcessing
}
