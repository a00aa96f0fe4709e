package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/KaiRo-at/daikinthing/internal/history"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/config"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/logging"
	"github.com/KaiRo-at/daikinthing/internal/thing"
)

// stubClient satisfies thing.Client with fixed readings.
type stubClient struct{}

func (stubClient) Identity(context.Context) (string, string, error) { return "aircon", "Office", nil }
func (stubClient) InsideTemperature(context.Context) (any, error) { return 24.0, nil }
func (stubClient) OutsideTemperature(context.Context) (any, error) { return 31.5, nil }
func (stubClient) TargetTemperature(context.Context) (any, error) { return 22.5, nil }
func (stubClient) Power(context.Context) (int, error) { return 1, nil }
func (stubClient) ModeCode(context.Context) (int, error) { return 3, nil }
func (stubClient) SetTargetTemperature(context.Context, float64) error { return nil }
func (stubClient) SetPower(context.Context, int) error { return nil }
func (stubClient) SetModeCode(context.Context, int) error { return nil }

// stubSink discards everything.
type stubSink struct{}

func (stubSink) Register(thing.Definition) error { return nil }
func (stubSink) NotifyExternalUpdate(string, string, thing.Value) {}
func (stubSink) Stop() {}

func testServer(t *testing.T, withLoop bool) (*Server, *history.Repository) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	readings := history.NewRepository(db)
	if err := readings.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	fleet := thing.NewFleet(stubSink{}, nil)
	if withLoop {
		loop, loopErr := thing.NewSyncLoop(context.Background(), thing.LoopOptions{
			Address: "192.168.13.30",
			Factory: func(string) thing.Client { return stubClient{} },
			Sink:    stubSink{},
		})
		if loopErr != nil {
			t.Fatalf("NewSyncLoop() error = %v", loopErr)
		}
		fleet.Register(loop)
	}

	server, err := New(Deps{
		Config:   config.APIConfig{Host: "127.0.0.1", Port: 0},
		Logger:   logging.Default(),
		Fleet:    fleet,
		Readings: readings,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return server, readings
}

func doRequest(t *testing.T, server *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, body
}

func TestHandleHealth(t *testing.T) {
	server, _ := testServer(t, false)

	rec, body := doRequest(t, server, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleListThings(t *testing.T) {
	server, _ := testServer(t, true)

	rec, body := doRequest(t, server, "/api/v1/things/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	things, ok := body["things"].([]any)
	if !ok || len(things) != 1 {
		t.Fatalf("things = %v", body["things"])
	}
	first := things[0].(map[string]any)
	if first["id"] != "daikin-192.168.13.30" {
		t.Errorf("id = %v", first["id"])
	}
	if first["state"] != "new" {
		t.Errorf("state = %v, want new", first["state"])
	}
}

func TestHandleGetThing(t *testing.T) {
	server, _ := testServer(t, true)

	t.Run("known thing", func(t *testing.T) {
		rec, body := doRequest(t, server, "/api/v1/things/daikin-192.168.13.30/")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if body["title"] != "Daikin aircon Office" {
			t.Errorf("title = %v", body["title"])
		}
	})

	t.Run("unknown thing", func(t *testing.T) {
		rec, body := doRequest(t, server, "/api/v1/things/nope/")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if body["code"] != ErrCodeNotFound {
			t.Errorf("code = %v", body["code"])
		}
	})
}

func TestHandleGetHistory(t *testing.T) {
	server, readings := testServer(t, true)
	ctx := context.Background()

	if err := readings.RecordReading(ctx, "daikin-192.168.13.30", map[string]any{"mode": "cool"}); err != nil {
		t.Fatalf("RecordReading() error = %v", err)
	}

	t.Run("returns entries", func(t *testing.T) {
		rec, body := doRequest(t, server, "/api/v1/things/daikin-192.168.13.30/history")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		entries, ok := body["entries"].([]any)
		if !ok || len(entries) != 1 {
			t.Fatalf("entries = %v", body["entries"])
		}
	})

	t.Run("bad limit rejected", func(t *testing.T) {
		rec, _ := doRequest(t, server, "/api/v1/things/daikin-192.168.13.30/history?limit=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("disabled history yields 404", func(t *testing.T) {
		server.readings = nil
		defer func() { server.readings = readings }()
		rec, _ := doRequest(t, server, "/api/v1/things/daikin-192.168.13.30/history")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
