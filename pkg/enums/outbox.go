package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateOrder         OutboxAggregateType = "order"
	AggregateReturnRequest OutboxAggregateType = "return_request"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateReturnRequest,
}

// String implements fmt.Stringer.
func (v OutboxAggregateType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (v OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into a OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validOutboxAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderCancelled     OutboxEventType = "order_cancelled"
	EventReturnRequested    OutboxEventType = "return_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderCancelled,
	EventReturnRequested,
}

// String implements fmt.Stringer.
func (v OutboxEventType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known OutboxEventType.
func (v OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into a OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
