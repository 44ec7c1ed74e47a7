// Package telemetry records part stock levels as InfluxDB time series so
// consumption can be charted per part over time.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog/log"

	"sparesmart-backend/config"
	"sparesmart-backend/internal/model"
)

var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed is returned when the server cannot be reached.
	ErrConnectionFailed = errors.New("influxdb: connection failed")
)

// MeasurementPartStock is the measurement written for each part observation.
const MeasurementPartStock = "part_stock"

const defaultConnectTimeout = 10 * time.Second

// Recorder accepts stock observations. Writes never block the caller.
type Recorder interface {
	RecordPartStock(part model.Part)
	Close() error
}

// Nop drops every observation. It is used when InfluxDB is disabled.
type Nop struct{}

func (Nop) RecordPartStock(model.Part) {}
func (Nop) Close() error               { return nil }

// InfluxRecorder writes points through the batching, non-blocking write API.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	now      func() time.Time
}

// Connect pings the server and prepares the write API.
func Connect(cfg config.InfluxDBConfig) (*InfluxRecorder, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(cfg.BatchSize)).
			SetFlushInterval(uint(cfg.FlushInterval)*1000),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func() {
		for err := range writeAPI.Errors() {
			log.Warn().Err(err).Msg("influxdb write failed")
		}
	}()

	log.Info().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Msg("connected to InfluxDB")
	return &InfluxRecorder{client: client, writeAPI: writeAPI, now: time.Now}, nil
}

// RecordPartStock queues one part_stock point.
func (r *InfluxRecorder) RecordPartStock(part model.Part) {
	r.writeAPI.WritePoint(PartStockPoint(part, r.now()))
}

// Close flushes pending points and closes the client.
func (r *InfluxRecorder) Close() error {
	if r.writeAPI != nil {
		r.writeAPI.Flush()
	}
	if r.client != nil {
		r.client.Close()
	}
	return nil
}

// PartStockPoint builds the point recorded for a part at the given time.
func PartStockPoint(part model.Part, at time.Time) *write.Point {
	return influxdb2.NewPoint(
		MeasurementPartStock,
		map[string]string{
			"part_id":     strconv.FormatInt(part.ID, 10),
			"part_number": part.PartNumber,
			"machine_id":  strconv.FormatInt(part.MachineID, 10),
		},
		map[string]interface{}{
			"stock_quantity":  part.StockQuantity,
			"min_stock_level": part.MinStockLevel,
			"low_stock":       part.IsLowStock(),
		},
		at,
	)
}
