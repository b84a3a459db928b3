package api

import (
	"bytes"
	"delivery-sim-service/internal/adapters/events"
	"delivery-sim-service/internal/adapters/repositories"
	"delivery-sim-service/internal/api/dto"
	"delivery-sim-service/internal/services"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

type testEnv struct {
	handler http.Handler
	broker  *events.Broker
}

func newTestEnv(t *testing.T, mutate func(*Options)) *testEnv {
	t.Helper()

	store := repositories.NewMemoryStore()
	broker := events.NewBroker()
	opts := Options{
		Store:       store,
		Simulations: services.NewSimulationService(store, broker),
		Broker:      broker,
	}
	if mutate != nil {
		mutate(&opts)
	}

	return &testEnv{handler: NewRouter(opts), broker: broker}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var res dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return res
}

// seed creates two rested drivers, one route and the 500/1500 order pair over HTTP.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()

	for _, name := range []string{"A", "B"} {
		rec := e.do(t, http.MethodPost, "/drivers",
			`{"name":"`+name+`","shift_hours":0,"past_week_hours":[6,6,6,6,6,6,7]}`)
		expectStatus(t, rec, http.StatusCreated)
	}

	rec := e.do(t, http.MethodPost, "/routes", `{"route_id":1,"distance_km":10,"traffic_level":"Low","base_time_min":60}`)
	expectStatus(t, rec, http.StatusCreated)

	rec = e.do(t, http.MethodPost, "/orders", `{"order_id":1,"value_rs":500,"route_id":1,"delivery_time":"01:00"}`)
	expectStatus(t, rec, http.StatusCreated)
	rec = e.do(t, http.MethodPost, "/orders", `{"order_id":2,"value_rs":1500,"route_id":1,"delivery_time":"02:00"}`)
	expectStatus(t, rec, http.StatusCreated)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/health", "")
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing %s header", requestIDHeader)
	}

	rec = env.do(t, http.MethodPost, "/health", "")
	expectStatus(t, rec, http.StatusMethodNotAllowed)

	rec = env.do(t, http.MethodGet, "/health", "", requestIDHeader, "abc-123")
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}

func TestRunSimulationEndToEnd(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t)

	rec := env.do(t, http.MethodPost, "/simulations", `{"available_drivers":2,"max_hours_per_driver":8,"route_start_time":"09:00"}`)
	expectStatus(t, rec, http.StatusOK)

	var sim dto.SimulationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sim); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sim.ID == "" || sim.Timestamp.IsZero() {
		t.Fatalf("missing id or timestamp: %+v", sim)
	}
	if sim.Results.TotalProfit != 2050 || sim.Results.EfficiencyScore != 100 {
		t.Fatalf("profit/efficiency = %v/%v, want 2050/100", sim.Results.TotalProfit, sim.Results.EfficiencyScore)
	}
	if len(sim.Results.Orders) != 2 || sim.Results.Orders[0].AssignedDriver != "A" || sim.Results.Orders[1].AssignedDriver != "B" {
		t.Fatalf("orders = %+v, want A then B", sim.Results.Orders)
	}
	if sim.Inputs.RouteStartTime != "09:00" {
		t.Fatalf("route_start_time = %q, want 09:00", sim.Inputs.RouteStartTime)
	}

	rec = env.do(t, http.MethodGet, "/simulations", "")
	expectStatus(t, rec, http.StatusOK)
	var list dto.ListSimulationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Simulations) != 1 || list.Simulations[0].ID != sim.ID {
		t.Fatalf("history = %+v, want the one run", list.Simulations)
	}

	rec = env.do(t, http.MethodGet, "/simulations/"+sim.ID, "")
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, "/simulations/nope", "")
	expectStatus(t, rec, http.StatusNotFound)
}

func TestRunSimulationBadInput(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t)

	for _, body := range []string{
		`{"available_drivers":"two","max_hours_per_driver":8}`,
		`{"available_drivers":2}`,
		`not json`,
	} {
		rec := env.do(t, http.MethodPost, "/simulations", body)
		expectStatus(t, rec, http.StatusBadRequest)

		res := decodeError(t, rec)
		if res.Error != "InvalidParameter" || res.Message != "check input types" {
			t.Fatalf("body %s: got %+v, want InvalidParameter/check input types", body, res)
		}
	}

	rec := env.do(t, http.MethodPost, "/simulations", `{"available_drivers":5,"max_hours_per_driver":8}`)
	expectStatus(t, rec, http.StatusBadRequest)
	res := decodeError(t, rec)
	if res.Error != "InvalidParameter" || res.Message != "available_drivers must be between 1 and 2" {
		t.Fatalf("got %+v, want range message", res)
	}

	rec = env.do(t, http.MethodPost, "/simulations", `{"available_drivers":1,"max_hours_per_driver":-1}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodGet, "/simulations", "")
	var list dto.ListSimulationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Simulations) != 0 {
		t.Fatalf("rejected runs were stored: %d", len(list.Simulations))
	}
}

func TestCRUDErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t)

	rec := env.do(t, http.MethodDelete, "/routes/1", "")
	expectStatus(t, rec, http.StatusConflict)
	if res := decodeError(t, rec); res.Error != "Conflict" {
		t.Fatalf("got %+v, want Conflict", res)
	}

	rec = env.do(t, http.MethodPost, "/drivers", `{"name":"C","shift_hours":1,"past_week_hours":[1,2]}`)
	expectStatus(t, rec, http.StatusBadRequest)
	if res := decodeError(t, rec); res.Error != "ValidationError" {
		t.Fatalf("got %+v, want ValidationError", res)
	}

	rec = env.do(t, http.MethodPost, "/drivers", `{"name":"C","unknown":true}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodPost, "/orders", `{"order_id":3,"value_rs":10,"route_id":9,"delivery_time":"03:00"}`)
	expectStatus(t, rec, http.StatusNotFound)

	rec = env.do(t, http.MethodPost, "/orders", `{"order_id":1,"value_rs":10,"route_id":1,"delivery_time":"03:00"}`)
	expectStatus(t, rec, http.StatusConflict)

	rec = env.do(t, http.MethodGet, "/drivers/999", "")
	expectStatus(t, rec, http.StatusNotFound)

	rec = env.do(t, http.MethodGet, "/drivers/abc", "")
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodPatch, "/routes/1", "")
	expectStatus(t, rec, http.StatusMethodNotAllowed)
}

func TestCRUDRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t)

	rec := env.do(t, http.MethodPut, "/routes/1", `{"distance_km":12,"traffic_level":"High","base_time_min":50}`)
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, "/orders/2", "")
	expectStatus(t, rec, http.StatusOK)
	var order dto.OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.Route == nil || order.Route.TrafficLevel != "High" || order.DeliveryTime != "02:00" || order.Status != "pending" {
		t.Fatalf("got %+v, want order 2 on updated High route", order)
	}

	rec = env.do(t, http.MethodGet, "/drivers", "")
	expectStatus(t, rec, http.StatusOK)
	var drivers dto.ListDriversResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &drivers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(drivers.Drivers) != 2 || drivers.Drivers[0].FatigueMultiplier != 1 {
		t.Fatalf("got %+v, want two rested drivers", drivers.Drivers)
	}

	rec = env.do(t, http.MethodDelete, "/orders/1", "")
	expectStatus(t, rec, http.StatusNoContent)
	rec = env.do(t, http.MethodDelete, "/orders/2", "")
	expectStatus(t, rec, http.StatusNoContent)
	rec = env.do(t, http.MethodDelete, "/routes/1", "")
	expectStatus(t, rec, http.StatusNoContent)
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.APIToken = "s3cret" })

	expectStatus(t, env.do(t, http.MethodGet, "/drivers", ""), http.StatusUnauthorized)
	expectStatus(t, env.do(t, http.MethodGet, "/drivers", "", "Authorization", "Bearer wrong"), http.StatusUnauthorized)
	expectStatus(t, env.do(t, http.MethodGet, "/drivers", "", "Authorization", "Bearer s3cret"), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodGet, "/health", ""), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodGet, "/metrics", ""), http.StatusOK)
}

func TestRateLimitOnSimulationRuns(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1) })
	env.seed(t)

	body := `{"available_drivers":2,"max_hours_per_driver":8}`
	expectStatus(t, env.do(t, http.MethodPost, "/simulations", body), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPost, "/simulations", body), http.StatusTooManyRequests)

	// history reads are not throttled
	expectStatus(t, env.do(t, http.MethodGet, "/simulations", ""), http.StatusOK)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/health", "")

	rec := env.do(t, http.MethodGet, "/metrics", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics output missing http_requests_total")
	}
}

func TestSimulationStream(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t)

	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/simulations/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.broker.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	res, err := http.Post(srv.URL+"/simulations", "application/json",
		bytes.NewBufferString(`{"available_drivers":2,"max_hours_per_driver":8}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt events.SimulationEvent
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read: %v", err)
	}
	if evt.Type != events.EventSimulationCompleted || evt.TotalProfit != 2050 {
		t.Fatalf("got %+v, want completed event with profit 2050", evt)
	}
}
