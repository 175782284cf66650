package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EventType
		expected string
	}{
		{"created", EventTypeCreated, "created"},
		{"recorded", EventTypeRecorded, "recorded"},
		{"completed", EventTypeCompleted, "completed"},
		{"closed", EventTypeClosed, "closed"},
		{"defaulted", EventTypeDefaulted, "defaulted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.et))
		})
	}
}

func TestEntityType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EntityType
		expected string
	}{
		{"contract", EntityTypeContract, "contract"},
		{"payment", EntityTypePayment, "payment"},
		{"schedule", EntityTypeSchedule, "schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.et))
		})
	}
}

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":        "a4f7",
		"principal": "100000.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeContract, payload)
	after := time.Now()

	assert.Equal(t, "contract.created", evt.Type)
	assert.Equal(t, EntityTypeContract, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	fixedTime := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	payload := map[string]interface{}{
		"id":     "a4f7",
		"amount": "2500.00",
	}

	evt := Event{
		Type:      "payment.recorded",
		Entity:    EntityTypePayment,
		Payload:   payload,
		Timestamp: fixedTime,
	}

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded Event
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Entity, decoded.Entity)
	assert.Equal(t, fixedTime.UTC(), decoded.Timestamp.UTC())

	// Payload should be preserved
	decodedPayload, ok := decoded.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a4f7", decodedPayload["id"])
	assert.Equal(t, "2500.00", decodedPayload["amount"])
}

func TestEvent_ToJSON(t *testing.T) {
	payload := map[string]interface{}{
		"id": "a4f7",
	}

	evt := NewEvent(EventTypeCompleted, EntityTypeContract, payload)

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Verify it's valid JSON
	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "contract.completed", decoded["type"])
	assert.Equal(t, "contract", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestContractEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"id":     "a4f7",
		"status": "active",
	}

	t.Run("ContractCreated", func(t *testing.T) {
		evt := ContractCreated(payload)
		assert.Equal(t, "contract.created", evt.Type)
		assert.Equal(t, EntityTypeContract, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("ContractCompleted", func(t *testing.T) {
		evt := ContractCompleted(payload)
		assert.Equal(t, "contract.completed", evt.Type)
		assert.Equal(t, EntityTypeContract, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("ContractClosed", func(t *testing.T) {
		evt := ContractClosed(payload)
		assert.Equal(t, "contract.closed", evt.Type)
		assert.Equal(t, EntityTypeContract, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("ContractDefaulted", func(t *testing.T) {
		evt := ContractDefaulted(payload)
		assert.Equal(t, "contract.defaulted", evt.Type)
		assert.Equal(t, EntityTypeContract, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})
}

func TestPaymentEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"amount": "2500.00",
		"period": float64(1),
	}

	evt := PaymentRecorded(payload)
	assert.Equal(t, "payment.recorded", evt.Type)
	assert.Equal(t, EntityTypePayment, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
}

func TestScheduleEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"contractId": "a4f7",
		"periods":    []interface{}{float64(2), float64(3)},
	}

	evt := ScheduleOverdue(payload)
	assert.Equal(t, "schedule.overdue", evt.Type)
	assert.Equal(t, EntityTypeSchedule, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
}
