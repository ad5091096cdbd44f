package domain

// PaymentStatus описывает состояние платежа на стороне провайдера.
type PaymentStatus string

const (
	// PaymentStatusApproved — единственный статус, по которому рассылаются уведомления.
	PaymentStatusApproved PaymentStatus = "approved"
	// PaymentStatusPending — платёж инициирован, но ещё не подтверждён.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusInProcess — платёж на ручной проверке у провайдера.
	PaymentStatusInProcess PaymentStatus = "in_process"
	// PaymentStatusRejected — провайдер отклонил платёж.
	PaymentStatusRejected PaymentStatus = "rejected"
	// PaymentStatusCancelled — платёж отменён до завершения.
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Approved сообщает, нужно ли запускать побочные эффекты по платежу.
func (s PaymentStatus) Approved() bool {
	return s == PaymentStatusApproved
}

// Payment — авторитетная запись о платеже, полученная от провайдера
// после webhook-уведомления. Не хранится дольше обработки запроса.
type Payment struct {
	ID     string
	Status PaymentStatus
	// TransactionAmount — итоговая сумма платежа в ARS.
	TransactionAmount float64
	// PayerEmail может быть пустым: провайдер не всегда возвращает почту покупателя.
	PayerEmail string
	// ExternalReference — наш идентификатор заказа, echo от провайдера.
	ExternalReference string
}
