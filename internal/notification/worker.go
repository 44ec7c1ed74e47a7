package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"

	"sparesmart-backend/internal/model"
)

// Alert kinds.
const (
	KindLowStock       = "low_stock"
	KindPartDue        = "part_due"
	KindCalibrationDue = "calibration_due"
)

// Alert is one message for the subscribers of a line.
type Alert struct {
	Kind   string `json:"kind"`
	LineID int64  `json:"line_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	// Key identifies the underlying item, e.g. "low_stock:part:12". Browsers
	// collapse notifications that share a tag.
	Key string `json:"tag"`
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// discardSender is used when no VAPID keys are configured.
type discardSender struct{}

func (discardSender) Send([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
	return &http.Response{StatusCode: http.StatusAccepted, Body: http.NoBody}, nil
}

// SubscriptionStore is the part of the store the workers need.
type SubscriptionStore interface {
	SubscriptionsForLine(ctx context.Context, lineID int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	subs    SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool. Without VAPID keys alerts are
// still consumed but nothing is sent.
func NewWorkerPool(size, queueSize int, subs SubscriptionStore, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size
	}

	var sender NotificationSender = &WebPushSender{}
	if webpushOptions == nil || webpushOptions.VAPIDPrivateKey == "" {
		log.Warn().Msg("VAPID keys not configured, push notifications are disabled")
		sender = discardSender{}
	}

	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, queueSize),
		subs:    subs,
		webpush: webpushOptions,
		sender:  sender,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Debug().Int("worker", id).Msg("notification worker started")
	for {
		select {
		case alert := <-wp.jobs:
			wp.sendAlert(ctx, alert)
		case <-ctx.Done():
			log.Debug().Int("worker", id).Msg("notification worker shutting down")
			return
		}
	}
}

// Dispatch queues an alert. It never blocks: when the queue is full the
// alert is dropped and false is returned.
func (wp *WorkerPool) Dispatch(alert Alert) bool {
	select {
	case wp.jobs <- alert:
		return true
	default:
		log.Warn().Str("kind", alert.Kind).Str("key", alert.Key).Msg("notification queue full, dropping alert")
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Alert {
	return wp.jobs
}

// sendAlert fans an alert out to every subscriber of its line.
func (wp *WorkerPool) sendAlert(ctx context.Context, alert Alert) {
	subscriptions, err := wp.subs.SubscriptionsForLine(ctx, alert.LineID)
	if err != nil {
		log.Error().Err(err).Int64("line_id", alert.LineID).Msg("failed to load subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode alert")
		return
	}

	log.Info().Int("count", len(subscriptions)).Str("kind", alert.Kind).Int64("line_id", alert.LineID).Msg("sending push notifications")
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to send notification")
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to delete expired subscription")
		}
	}
}
