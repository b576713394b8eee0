package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/sweeney/power-clock/internal/assets"
	"github.com/sweeney/power-clock/internal/buttons"
	"github.com/sweeney/power-clock/internal/config"
	"github.com/sweeney/power-clock/internal/display"
	"github.com/sweeney/power-clock/internal/geometry"
	"github.com/sweeney/power-clock/internal/gpio"
	"github.com/sweeney/power-clock/internal/logging"
	"github.com/sweeney/power-clock/internal/mqtt"
	"github.com/sweeney/power-clock/internal/outage"
	"github.com/sweeney/power-clock/internal/position"
	"github.com/sweeney/power-clock/internal/render"
	"github.com/sweeney/power-clock/internal/scheduler"
	"github.com/sweeney/power-clock/internal/status"
	"github.com/sweeney/power-clock/internal/widget"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfo(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}
	if info.IP != "192.168.1.100" {
		t.Errorf("IP: got %q, want 192.168.1.100", info.IP)
	}
	if info.SSID != "MyNetwork" {
		t.Errorf("SSID: got %q, want MyNetwork", info.SSID)
	}
	if info.Gateway != "" {
		t.Errorf("Gateway: got %q, want empty", info.Gateway)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestSignalName(t *testing.T) {
	tests := []struct {
		sig  os.Signal
		want string
	}{
		{syscall.SIGINT, "SIGINT"},
		{syscall.SIGTERM, "SIGTERM"},
		{syscall.SIGHUP, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := signalName(tt.sig); got != tt.want {
			t.Errorf("signalName(%v): got %q, want %q", tt.sig, got, tt.want)
		}
	}
}

func TestQueueTitle(t *testing.T) {
	if got := queueTitle("GPV5.1"); got != "Черга 5.1" {
		t.Errorf("got %q, want Черга 5.1", got)
	}
}

// parseArgs runs the app with a stub action and returns the loaded config.
func parseArgs(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var cfg *config.Config
	var loadErr error
	app := newApp()
	app.Action = func(c *cli.Context) error {
		cfg, loadErr = loadConfig(c)
		return nil
	}
	if err := app.Run(append([]string{"power-clock"}, args...)); err != nil {
		t.Fatalf("app.Run: %v", err)
	}
	return cfg, loadErr
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := parseArgs(t)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Variant != "24h" {
		t.Errorf("Variant: got %q, want 24h", cfg.Variant)
	}
	if cfg.Refresh.Data != 15*time.Minute || cfg.Refresh.Frame != time.Minute {
		t.Errorf("intervals: got %v/%v, want 15m/1m", cfg.Refresh.Data, cfg.Refresh.Frame)
	}
	if cfg.MQTT.Broker != "" || cfg.GPIO.Enabled {
		t.Error("MQTT and GPIO should be off by default")
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("POWERCLOCK_SOURCE_QUEUE", "GPV1.2")
	t.Setenv("POWERCLOCK_MQTT_BROKER", "tcp://env:1883")

	cfg, err := parseArgs(t, "--broker", "tcp://flag:1883", "--gpio", "--variant", "12h")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.Queue != "GPV1.2" {
		t.Errorf("Queue: got %q, want GPV1.2 from env", cfg.Source.Queue)
	}
	if cfg.MQTT.Broker != "tcp://flag:1883" {
		t.Errorf("Broker: got %q, want flag value", cfg.MQTT.Broker)
	}
	if !cfg.GPIO.Enabled {
		t.Error("expected GPIO enabled by flag")
	}
	if n := len(cfg.TemplateNames()); n != 2 {
		t.Errorf("12h templates: got %d, want 2", n)
	}
}

func TestLoadConfigRejectsBadVariant(t *testing.T) {
	if _, err := parseArgs(t, "--variant", "36h"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

// sectorPixel samples the middle of an hour's sector on a 24h frame.
func sectorPixel(img image.Image, hour int) color.NRGBA {
	start, _, end := geometry.SectorAngles(hour, 24)
	p := geometry.Polar(geometry.Point{X: 200, Y: 200}, (start+end)/2, 115)
	return color.NRGBAModel.Convert(img.At(int(p.X), int(p.Y))).(color.NRGBA)
}

func writeTemplate(t *testing.T, dir, name string) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRenderCommand(t *testing.T) {
	at := time.Date(2026, 10, 15, 14, 30, 0, 0, time.Local)
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"fact":{"data":{%q:{"GPV5.1":{"15":"no","16":"no"}}}}}`, outage.DayKey(at))
	}))
	defer feed.Close()

	dir := t.TempDir()
	writeTemplate(t, dir, "powerClock-24-w.png")
	out := filepath.Join(dir, "frame.png")

	err := newApp().Run([]string{
		"power-clock",
		"--assets-dir", dir,
		"--source-url", feed.URL,
		"--log-level", "error",
		"render", "--out", out, "--at", "2026-10-15T14:30",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 400, 400) {
		t.Fatalf("bounds: got %v, want 400x400", img.Bounds())
	}
	for hour, red := range map[int]bool{14: false, 15: true, 16: true, 17: false} {
		c := sectorPixel(img, hour)
		if isRed := c.R > 200 && c.G < 140; isRed != red {
			t.Errorf("hour %d: got %v, want red=%v", hour, c, red)
		}
	}
}

func TestRenderCommandMissingTemplate(t *testing.T) {
	err := newApp().Run([]string{
		"power-clock",
		"--assets-dir", t.TempDir(),
		"--log-level", "error",
		"render", "--out", filepath.Join(t.TempDir(), "frame.png"),
	})
	if err == nil {
		t.Fatal("expected error for missing template")
	}
}

type testDaemon struct {
	*daemon
	fetcher   *outage.FakeFetcher
	sink      *display.Fake
	publisher *mqtt.FakePublisher
	fs        afero.Fs
	hook      *test.Hook
}

func newTestDaemon(t *testing.T, reader gpio.Reader) *testDaemon {
	t.Helper()
	v := config.New()
	cfg, err := config.Load(v, "")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.GPIO.Poll = 5 * time.Millisecond
	cfg.GPIO.Debounce = 10 * time.Millisecond

	font, err := assets.DefaultFont()
	if err != nil {
		t.Fatalf("font: %v", err)
	}
	renderer, err := render.New(render.Options{
		Layout:    render.Layout24(),
		Templates: []image.Image{image.NewRGBA(image.Rect(0, 0, 8, 8))},
		Font:      font,
		Text:      render.DefaultTextStyle(),
	})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	logger, hook := test.NewNullLogger()
	fs := afero.NewMemMapFs()
	td := &testDaemon{
		fetcher:   outage.NewFakeFetcher(map[string]string{"5": "no"}),
		sink:      display.NewFake(),
		publisher: mqtt.NewFakePublisher(),
		fs:        fs,
		hook:      hook,
	}
	d := &daemon{
		cfg:       cfg,
		log:       logging.Component(logger, "main"),
		tracker:   status.NewTracker(time.Now(), status.Config{Variant: cfg.Variant}),
		sinks:     display.Multi{td.sink},
		publisher: td.publisher,
		positions: position.NewStore(fs, "pos.txt"),
		buttons:   reader,
		now:       time.Now,
	}
	d.widget, err = widget.New(widget.Options{
		Fetcher:       td.fetcher,
		Queue:         cfg.Source.Queue,
		Renderer:      renderer,
		Sink:          d.sinks,
		Publisher:     td.publisher,
		Tracker:       d.tracker,
		Log:           logging.Component(logger, "widget"),
		FrameInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("widget: %v", err)
	}
	td.daemon = d
	return td
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDaemonShutdownOnSignal(t *testing.T) {
	td := newTestDaemon(t, nil)
	if err := afero.WriteFile(td.fs, "pos.txt", []byte("10,20"), 0o644); err != nil {
		t.Fatal(err)
	}

	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- td.run(context.Background(), sig) }()

	waitFor(t, "first frame", func() bool { return len(td.sink.Frames()) > 0 })
	if snap := td.tracker.Snapshot(); snap.PositionX != 10 || snap.PositionY != 20 {
		t.Errorf("loaded position: got (%d,%d), want (10,20)", snap.PositionX, snap.PositionY)
	}
	td.tracker.SetPosition(55, 66)

	sig <- syscall.SIGTERM
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after SIGTERM")
	}

	events := td.publisher.SystemEvents()
	if len(events) != 2 {
		t.Fatalf("system events: got %d, want 2", len(events))
	}
	if events[0].Event != "STARTUP" {
		t.Errorf("first event: got %q, want STARTUP", events[0].Event)
	}
	if events[1].Event != "SHUTDOWN" || events[1].Reason != "SIGTERM" {
		t.Errorf("last event: got %s/%s, want SHUTDOWN/SIGTERM", events[1].Event, events[1].Reason)
	}
	if len(td.publisher.Schedules()) != 1 {
		t.Errorf("schedule events: got %d, want 1", len(td.publisher.Schedules()))
	}

	saved, err := afero.ReadFile(td.fs, "pos.txt")
	if err != nil {
		t.Fatalf("read position: %v", err)
	}
	if string(saved) != "55,66" {
		t.Errorf("saved position: got %q, want 55,66", saved)
	}
	if !td.sink.Closed() {
		t.Error("sinks should be closed on shutdown")
	}
}

func TestDaemonDismissButton(t *testing.T) {
	samples := make([]gpio.Sample, 0, 21)
	for i := 0; i < 20; i++ {
		samples = append(samples, gpio.Sample{})
	}
	samples = append(samples, gpio.Sample{Dismiss: true})
	reader := gpio.NewFakeReader(samples)
	td := newTestDaemon(t, reader)

	done := make(chan error, 1)
	go func() { done <- td.run(context.Background(), make(chan os.Signal)) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after the dismiss button")
	}

	events := td.publisher.SystemEvents()
	if len(events) == 0 || events[len(events)-1].Reason != "DISMISSED" {
		t.Errorf("expected a DISMISSED shutdown event, got %+v", events)
	}
	if !reader.Closed {
		t.Error("gpio reader should be closed")
	}
	if _, err := afero.ReadFile(td.fs, "pos.txt"); err != nil {
		t.Errorf("position should be saved on dismiss: %v", err)
	}
}

func TestOnPressRefresh(t *testing.T) {
	td := newTestDaemon(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go td.widget.Run(ctx)

	waitFor(t, "first fetch", func() bool { return td.fetcher.Calls() == 1 })
	td.onPress(buttons.Press{Timestamp: time.Now(), Button: buttons.ButtonRefresh})
	waitFor(t, "refresh fetch", func() bool { return td.fetcher.Calls() == 2 })
}

func TestDaemonRolloverRefresh(t *testing.T) {
	td := newTestDaemon(t, nil)
	cal, err := scheduler.NewCalendar("@every 1s", td.widget.Refresh, td.log)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	td.calendar = cal

	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- td.run(context.Background(), sig) }()

	waitFor(t, "rollover fetch", func() bool { return td.fetcher.Calls() >= 2 })
	sig <- syscall.SIGINT
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}
