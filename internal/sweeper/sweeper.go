// Package sweeper periodically scans the inventory for low stock and for
// part checks and checkweigher calibrations that are coming due.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"sparesmart-backend/config"
	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/inventory"
	"sparesmart-backend/internal/notification"
	"sparesmart-backend/internal/telemetry"
)

// Snapshotter loads the whole inventory.
type Snapshotter interface {
	Snapshot(ctx context.Context) (inventory.Snapshot, error)
}

// Dispatcher queues alerts for delivery.
type Dispatcher interface {
	Dispatch(alert notification.Alert) bool
}

// Report summarises one sweep.
type Report struct {
	LowStock        int `json:"low_stock"`
	PartsDue        int `json:"parts_due"`
	CalibrationsDue int `json:"calibrations_due"`
	Alerted         int `json:"alerted"`
	Suppressed      int `json:"suppressed"`
}

// Service runs the sweep loop.
type Service struct {
	cfg        config.SweeperConfig
	store      Snapshotter
	dispatcher Dispatcher
	events     events.Publisher
	telemetry  telemetry.Recorder
	now        func() time.Time

	mu   sync.Mutex
	seen *cache.Cache
}

// NewService creates a sweeper. Alerts with the same key are raised at most
// once per cfg.RealertAfter, whether they come from a sweep or from Dispatch.
func NewService(cfg config.SweeperConfig, s Snapshotter, d Dispatcher, pub events.Publisher, rec telemetry.Recorder) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if rec == nil {
		rec = telemetry.Nop{}
	}
	return &Service{
		cfg:        cfg,
		store:      s,
		dispatcher: d,
		events:     pub,
		telemetry:  rec,
		seen:       cache.New(cfg.RealertAfter, 10*time.Minute),
		now:        time.Now,
	}
}

// Run sweeps once immediately and then every cfg.Interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Info().Msg("sweeper is disabled, not starting")
		return
	}
	log.Info().Dur("interval", s.cfg.Interval).Dur("horizon", s.cfg.Horizon).Msg("starting sweeper")

	s.sweepAndLog(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweeper shutting down")
			return
		case <-timer.C:
			s.sweepAndLog(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) sweepAndLog(ctx context.Context) {
	report, err := s.SweepOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep failed")
		return
	}
	log.Info().
		Int("low_stock", report.LowStock).
		Int("parts_due", report.PartsDue).
		Int("calibrations_due", report.CalibrationsDue).
		Int("alerted", report.Alerted).
		Int("suppressed", report.Suppressed).
		Msg("sweep finished")
}

// SweepOnce loads a snapshot, records part stock and raises the alerts that
// are not currently suppressed.
func (s *Service) SweepOnce(ctx context.Context) (Report, error) {
	var report Report

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return report, err
	}

	machines := snap.MachineIndex()
	lines := snap.LineIndex()
	cutoff := s.now().Add(s.cfg.Horizon)

	for _, p := range snap.Parts {
		s.telemetry.RecordPartStock(p)
	}

	var alerts []notification.Alert
	var ids []int64

	low := inventory.LowStockParts(snap.Parts)
	report.LowStock = len(low)
	for _, p := range low {
		m := machines[p.MachineID]
		alerts = append(alerts, notification.LowStockAlert(p, m, lines[m.LineID]))
		ids = append(ids, p.ID)
	}

	due := inventory.DueParts(snap.Parts, cutoff)
	report.PartsDue = len(due)
	for _, p := range due {
		m := machines[p.MachineID]
		alerts = append(alerts, notification.PartDueAlert(p, m, lines[m.LineID]))
		ids = append(ids, p.ID)
	}

	cws := inventory.DueCheckweighers(snap.Checkweighers, cutoff)
	report.CalibrationsDue = len(cws)
	for _, c := range cws {
		alerts = append(alerts, notification.CalibrationDueAlert(c, lines[c.LineID]))
		ids = append(ids, c.ID)
	}

	for i, alert := range alerts {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		sent, suppressed := s.dispatchOnce(alert)
		if suppressed {
			report.Suppressed++
		}
		if !sent {
			continue
		}
		report.Alerted++

		if err := s.events.Publish(ctx, events.NewEvent(events.EntityAlert, alert.Kind, ids[i], alert)); err != nil {
			log.Warn().Err(err).Str("key", alert.Key).Msg("failed to publish alert event")
		}
	}

	return report, nil
}

// Dispatch forwards an alert raised outside a sweep, such as a part going low
// on write, and records its key so the next sweep does not raise it again.
// It reports whether the alert was queued.
func (s *Service) Dispatch(alert notification.Alert) bool {
	sent, _ := s.dispatchOnce(alert)
	return sent
}

// dispatchOnce queues the alert unless its key was raised within the
// realert window. A key is only recorded once the dispatcher accepts it.
func (s *Service) dispatchOnce(alert notification.Alert) (sent, suppressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.seen.Get(alert.Key); found {
		return false, true
	}
	if !s.dispatcher.Dispatch(alert) {
		return false, false
	}
	s.seen.Set(alert.Key, struct{}{}, cache.DefaultExpiration)
	return true, false
}
