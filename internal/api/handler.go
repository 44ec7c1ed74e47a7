package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"sparesmart-backend/config"
	"sparesmart-backend/internal/auth"
	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/notification"
	"sparesmart-backend/internal/store"
	"sparesmart-backend/internal/telemetry"
)

// Dispatcher queues alerts for push delivery.
type Dispatcher interface {
	Dispatch(alert notification.Alert) bool
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(notification.Alert) bool { return false }

// Deps are the collaborators of the API handlers. Only Store is required.
type Deps struct {
	Store      store.Store
	WebPush    *webpush.Options
	Dispatcher Dispatcher
	Events     events.Publisher
	Telemetry  telemetry.Recorder
	Auth       *auth.Service
	Display    config.DisplayConfig
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	webpush    *webpush.Options
	dispatcher Dispatcher
	events     events.Publisher
	telemetry  telemetry.Recorder
	auth       *auth.Service
	display    config.DisplayConfig
}

// NewHandler creates a new API handler, filling optional collaborators with no-ops.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		store:      d.Store,
		webpush:    d.WebPush,
		dispatcher: d.Dispatcher,
		events:     d.Events,
		telemetry:  d.Telemetry,
		auth:       d.Auth,
		display:    d.Display,
	}
	if h.dispatcher == nil {
		h.dispatcher = nopDispatcher{}
	}
	if h.events == nil {
		h.events = events.Nop{}
	}
	if h.telemetry == nil {
		h.telemetry = telemetry.Nop{}
	}
	if h.auth == nil {
		h.auth = auth.NewService(config.AuthConfig{})
	}
	if h.display.MachineOrder == nil {
		h.display.MachineOrder = config.DefaultMachineOrder
	}
	return h
}
