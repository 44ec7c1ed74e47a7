package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"sparesmart-backend/config"
	"sparesmart-backend/internal/auth"
	"sparesmart-backend/internal/db"
	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/model"
	"sparesmart-backend/internal/notification"
	"sparesmart-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingDispatcher struct {
	alerts []notification.Alert
}

func (d *recordingDispatcher) Dispatch(alert notification.Alert) bool {
	d.alerts = append(d.alerts, alert)
	return true
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingTelemetry struct {
	parts []model.Part
}

func (r *recordingTelemetry) RecordPartStock(part model.Part) { r.parts = append(r.parts, part) }
func (r *recordingTelemetry) Close() error                    { return nil }

type testEnv struct {
	router     *gin.Engine
	store      store.Store
	dispatcher *recordingDispatcher
	publisher  *recordingPublisher
	telemetry  *recordingTelemetry
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Database = config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:api_%s?mode=memory&cache=shared", nonAlnum.ReplaceAllString(t.Name(), "_")),
		LogLevel: "silent",
	}
	for _, m := range mutate {
		m(cfg)
	}
	cfg.ApplyDefaults()

	gdb, err := db.Init(&cfg.Database)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{
		store:      store.NewGormStore(gdb),
		dispatcher: &recordingDispatcher{},
		publisher:  &recordingPublisher{},
		telemetry:  &recordingTelemetry{},
	}
	handler := NewHandler(Deps{
		Store:      env.store,
		Dispatcher: env.dispatcher,
		Events:     env.publisher,
		Telemetry:  env.telemetry,
		Auth:       auth.NewService(cfg.Auth),
		Display:    cfg.Display,
	})
	env.router = NewRouter(handler, cfg)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (e *testEnv) createLine(t *testing.T, name string) model.Line {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/lines", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var line model.Line
	decode(t, w, &line)
	return line
}

func (e *testEnv) createMachine(t *testing.T, lineID int64, name string) model.Machine {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/machines", gin.H{"line_id": lineID, "name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var machine model.Machine
	decode(t, w, &machine)
	return machine
}

func (e *testEnv) createPart(t *testing.T, body gin.H) model.Part {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/parts", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var part model.Part
	decode(t, w, &part)
	return part
}
