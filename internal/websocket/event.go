package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeRecorded  EventType = "recorded"
	EventTypeCompleted EventType = "completed"
	EventTypeClosed    EventType = "closed"
	EventTypeDefaulted EventType = "defaulted"
	EventTypeOverdue   EventType = "overdue"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeContract EntityType = "contract"
	EntityTypePayment  EntityType = "payment"
	EntityTypeSchedule EntityType = "schedule"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "contract.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "contract"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ContractCreated creates a contract.created event
func ContractCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeContract, payload)
}

// ContractCompleted creates a contract.completed event
func ContractCompleted(payload interface{}) Event {
	return NewEvent(EventTypeCompleted, EntityTypeContract, payload)
}

// ContractClosed creates a contract.closed event
func ContractClosed(payload interface{}) Event {
	return NewEvent(EventTypeClosed, EntityTypeContract, payload)
}

// ContractDefaulted creates a contract.defaulted event
func ContractDefaulted(payload interface{}) Event {
	return NewEvent(EventTypeDefaulted, EntityTypeContract, payload)
}

// PaymentRecorded creates a payment.recorded event
func PaymentRecorded(payload interface{}) Event {
	return NewEvent(EventTypeRecorded, EntityTypePayment, payload)
}

// ScheduleOverdue creates a schedule.overdue event
func ScheduleOverdue(payload interface{}) Event {
	return NewEvent(EventTypeOverdue, EntityTypeSchedule, payload)
}
