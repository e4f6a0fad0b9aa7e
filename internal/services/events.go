package services

// EventPublisher pushes domain events to the message broker. Implementations
// must be safe for concurrent use; services treat publishing as best-effort
// and never fail a committed write because the broker is down.
type EventPublisher interface {
	PublishEvent(event string, payload map[string]interface{}) error
}

const (
	EventCheckoutCreated       = "checkout.created"
	EventCheckoutStatusChanged = "checkout.status_changed"
	EventOrderSplit            = "order.split"
	EventOrderStatusChanged    = "order.status_changed"
)
