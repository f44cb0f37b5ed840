package observer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/game"
	"github.com/pthm-cable/survival/telemetry"
	"github.com/pthm-cable/survival/traits"
)

func newTestGame(t *testing.T) *game.Game {
	t.Helper()
	cfg := config.Defaults()
	cfg.Plants.SpawnChance = 0
	cfg.Population.Floor = 0
	g, err := game.NewGame(cfg, game.Options{Seed: 1, Empty: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if _, err := g.AddAnimal(game.AnimalSpec{X: 100, Y: 200, Genome: traits.Genome{
		Speed: 1, Size: 2, Sense: 2, Diet: traits.Carnivore, Color: traits.Color{R: 10, G: 20, B: 30},
	}}); err != nil {
		t.Fatalf("AddAnimal: %v", err)
	}
	g.AddPlant(game.PlantSpec{X: 300, Y: 400, Energy: 30, Size: 1, Color: traits.Color{G: 150}})
	return g
}

func TestNewFrame(t *testing.T) {
	g := newTestGame(t)
	g.Step()

	f := NewFrame(g)
	if f.Type != TypeFrame || f.Tick != 1 || f.Generation != 1 {
		t.Errorf("header = %s tick %d generation %d", f.Type, f.Tick, f.Generation)
	}
	if len(f.Animals) != 1 || len(f.Plants) != 1 {
		t.Fatalf("frame has %d animals, %d plants", len(f.Animals), len(f.Plants))
	}
	if a := f.Animals[0]; a.Radius != 15 || a.Marker != traits.Carnivore.Marker() || a.Color != (traits.Color{R: 10, G: 20, B: 30}) {
		t.Errorf("animal frame = %+v", a)
	}
	if p := f.Plants[0]; p.Radius != 6 {
		t.Errorf("plant radius = %v, want 6", p.Radius)
	}
	if f.Sample == nil || f.Sample.Carnivores != 1 {
		t.Errorf("sample = %+v", f.Sample)
	}
	if len(f.Panel) == 0 || f.Panel[0] != "Generation: 1" {
		t.Errorf("panel = %q", f.Panel)
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub(1)
	_, frames := h.subscribe()

	for tick := int32(1); tick <= 3; tick++ {
		if err := h.Publish(Frame{Type: TypeFrame, Tick: tick}); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(frames); got != 1 {
		t.Errorf("queued = %d, want 1", got)
	}
	if h.Dropped() != 2 {
		t.Errorf("dropped = %d, want 2", h.Dropped())
	}

	var last Frame
	if err := json.Unmarshal(h.Last(), &last); err != nil {
		t.Fatal(err)
	}
	if last.Tick != 3 {
		t.Errorf("last tick = %d, want 3", last.Tick)
	}
}

func TestOnTickPublishesEveryN(t *testing.T) {
	g := newTestGame(t)
	h := NewHub(8)
	_, frames := h.subscribe()

	hook := h.OnTick(2)
	for i := 0; i < 5; i++ {
		g.Step()
		hook(g)
	}

	if got := len(frames); got != 2 {
		t.Errorf("published %d frames, want 2", got)
	}
}

func TestStateHandler(t *testing.T) {
	h := NewHub(1)
	s := NewServer(h, make(chan game.Command, 1))

	rec := httptest.NewRecorder()
	s.StateHandler()(rec, httptest.NewRequest(http.MethodGet, "/v1/state", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status before first frame = %d", rec.Code)
	}

	g := newTestGame(t)
	if err := h.Publish(NewFrame(g)); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	s.StateHandler()(rec, httptest.NewRequest(http.MethodGet, "/v1/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var f Frame
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatal(err)
	}
	if len(f.Animals) != 1 {
		t.Errorf("animals = %d, want 1", len(f.Animals))
	}

	rec = httptest.NewRecorder()
	s.StateHandler()(rec, httptest.NewRequest(http.MethodPost, "/v1/state", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", rec.Code)
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebsocketStreamAndCommands(t *testing.T) {
	h := NewHub(4)
	commands := make(chan game.Command, 1)
	srv := httptest.NewServer(NewServer(h, commands).Handler(nil))
	defer srv.Close()

	g := newTestGame(t)
	g.Step()
	if err := h.Publish(NewFrame(g)); err != nil {
		t.Fatal(err)
	}

	conn := dial(t, srv)
	if err := conn.WriteJSON(SubscribeMsg{Type: TypeSubscribe, ProtocolVersion: ProtocolVersion}); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if f.Tick != 1 {
		t.Errorf("frame tick = %d, want 1", f.Tick)
	}

	if err := conn.WriteJSON(CommandMsg{Type: TypeCommand, Command: "PAUSE"}); err != nil {
		t.Fatal(err)
	}
	select {
	case cmd := <-commands:
		if cmd != game.CommandPause {
			t.Errorf("command = %v, want PAUSE", cmd)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("command not forwarded")
	}
}

func TestWebsocketRejectsMissingSubscribe(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewHub(1), make(chan game.Command)).Handler(nil))
	defer srv.Close()

	conn := dial(t, srv)
	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Errorf("err = %v, want policy violation close", err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := telemetry.NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	m.ObserveSample(telemetry.Sample{Herbivores: 4, Plants: 9, Generation: 1})

	srv := httptest.NewServer(NewServer(NewHub(1), nil).Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "survival_plants 9") {
		t.Errorf("metrics output missing plant gauge:\n%s", body)
	}
}
