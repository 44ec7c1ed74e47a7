// Package events publishes inventory changes and alerts to an MQTT broker so
// line dashboards and PLC gateways can follow stock without polling the API.
package events

import (
	"context"
	"errors"
	"time"
)

// Errors returned by publishers. Use errors.Is() to check for them.
var (
	// ErrNotConnected is returned when publishing on a disconnected client.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when the broker does not acknowledge a publish.
	ErrPublishFailed = errors.New("mqtt: publish failed")
)

// Entities and actions used in topics.
const (
	EntityLine         = "lines"
	EntityMachine      = "machines"
	EntityPart         = "parts"
	EntityCheckweigher = "checkweighers"
	EntityAlert        = "alerts"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is the JSON payload of every published message.
type Event struct {
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	ID     int64     `json:"id"`
	At     time.Time `json:"at"`
	Data   any       `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(entity, action string, id int64, data any) Event {
	return Event{Entity: entity, Action: action, ID: id, At: time.Now().UTC(), Data: data}
}

// Publisher sends events somewhere. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event. It is used when MQTT is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                        { return nil }
