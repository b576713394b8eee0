// Command power-clock draws today's power-outage schedule as a clock face
// and keeps it current on the web page, a PNG file or an e-paper panel.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"golang.org/x/time/rate"

	"github.com/sweeney/power-clock/internal/assets"
	"github.com/sweeney/power-clock/internal/buttons"
	"github.com/sweeney/power-clock/internal/config"
	"github.com/sweeney/power-clock/internal/display"
	"github.com/sweeney/power-clock/internal/gpio"
	"github.com/sweeney/power-clock/internal/logging"
	"github.com/sweeney/power-clock/internal/metrics"
	"github.com/sweeney/power-clock/internal/mqtt"
	"github.com/sweeney/power-clock/internal/outage"
	"github.com/sweeney/power-clock/internal/position"
	"github.com/sweeney/power-clock/internal/render"
	"github.com/sweeney/power-clock/internal/scheduler"
	"github.com/sweeney/power-clock/internal/status"
	"github.com/sweeney/power-clock/internal/web"
	"github.com/sweeney/power-clock/internal/widget"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// Flags that override a config key when given on the command line.
var (
	stringFlagKeys = map[string]string{
		"variant":    "variant",
		"queue":      "source.queue",
		"source-url": "source.url",
		"broker":     "mqtt.broker",
		"http":       "http.addr",
		"png":        "output.png",
		"assets-dir": "assets.dir",
		"font":       "assets.font",
		"position":   "position.file",
		"log-level":  "logging.level",
		"log-format": "logging.format",
	}
	boolFlagKeys = map[string]string{
		"epaper": "output.epaper",
		"gpio":   "gpio.enabled",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "power-clock"
	app.Usage = "show today's power-outage schedule as a clock face"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "YAML config file"},
		cli.StringFlag{Name: "variant", Usage: `face layout, "12h" or "24h"`},
		cli.StringFlag{Name: "queue", Usage: "outage queue, e.g. GPV5.1"},
		cli.StringFlag{Name: "source-url", Usage: "schedule JSON URL"},
		cli.StringFlag{Name: "broker", Usage: "MQTT broker address (empty disables MQTT)"},
		cli.StringFlag{Name: "http", Usage: "HTTP listen address (empty disables the web page)"},
		cli.StringFlag{Name: "png", Usage: "PNG file rewritten on every frame"},
		cli.BoolFlag{Name: "epaper", Usage: "draw frames on the Waveshare 2.13in e-paper HAT"},
		cli.BoolFlag{Name: "gpio", Usage: "watch the refresh and dismiss buttons"},
		cli.StringFlag{Name: "assets-dir", Usage: "directory holding templates and font"},
		cli.StringFlag{Name: "font", Usage: "TTF/OTF font for the date text"},
		cli.StringFlag{Name: "position", Usage: "file storing the widget position"},
		cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		cli.StringFlag{Name: "log-format", Usage: "text or json"},
	}
	app.Action = runCommand
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "run the clock until interrupted or dismissed",
			Action: runCommand,
		},
		{
			Name:  "render",
			Usage: "fetch the schedule, draw one frame to a PNG file and exit",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out, o", Value: "power-clock.png", Usage: "output file"},
				cli.StringFlag{Name: "at", Usage: `local time to draw, "2006-01-02T15:04" (default now)`},
			},
			Action: renderCommand,
		},
	}
	return app
}

// loadConfig layers command-line flags over the file and environment.
func loadConfig(c *cli.Context) (*config.Config, error) {
	v := config.New()
	for flag, key := range stringFlagKeys {
		if c.GlobalIsSet(flag) {
			v.Set(key, c.GlobalString(flag))
		}
	}
	for flag, key := range boolFlagKeys {
		if c.GlobalIsSet(flag) {
			v.Set(key, c.GlobalBool(flag))
		}
	}
	return config.Load(v, c.GlobalString("config"))
}

func setup(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runCommand(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	d, err := newDaemon(cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return d.run(context.Background(), sigCh)
}

func renderCommand(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	at := time.Now()
	if s := c.String("at"); s != "" {
		at, err = time.ParseInLocation("2006-01-02T15:04", s, time.Local)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	}

	fs := afero.NewOsFs()
	renderer, err := newRenderer(cfg, fs)
	if err != nil {
		return err
	}
	w, err := widget.New(widget.Options{
		Fetcher:      outage.NewHTTPFetcher(cfg.Source.URL, cfg.Source.Queue, cfg.Source.Timeout),
		Queue:        cfg.Source.Queue,
		Renderer:     renderer,
		Sink:         display.Multi{},
		Log:          logging.Component(logger, "widget"),
		Now:          func() time.Time { return at },
		FetchTimeout: cfg.Source.Timeout,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := w.RefreshData(ctx); err != nil {
		return err
	}
	if err := w.RefreshFrame(ctx); err != nil {
		return err
	}
	// A failed write must fail the command, so the file is not a widget sink.
	if err := display.NewPNGFile(fs, c.String("out")).Show(ctx, w.Frame()); err != nil {
		return err
	}
	logger.WithField("file", c.String("out")).Info("frame written")
	return nil
}

// newRenderer loads the variant's templates and font through the configured
// asset resolvers.
func newRenderer(cfg *config.Config, fs afero.Fs) (*render.Renderer, error) {
	var resolver assets.Resolver
	if cfg.Assets.Dir != "" {
		resolver = assets.NewDirResolver(fs, cfg.Assets.Dir)
	} else {
		wd, err := assets.WorkingDir(fs)
		if err != nil {
			return nil, err
		}
		resolver = wd
	}
	if cfg.Assets.Bundle {
		bundle, err := assets.ExecutableBundle(fs, resolver)
		if err != nil {
			return nil, err
		}
		resolver = bundle
	}

	layout, err := render.LayoutFor(render.Variant(cfg.Variant))
	if err != nil {
		return nil, err
	}

	var templates []image.Image
	for _, name := range cfg.TemplateNames() {
		img, err := assets.LoadImage(resolver, name)
		if err != nil {
			return nil, fmt.Errorf("load template: %w", err)
		}
		templates = append(templates, img)
	}

	opts := render.Options{
		Layout:    layout,
		Templates: templates,
		CacheSize: cfg.CacheSize,
	}
	if layout.Text {
		ft, err := assets.LoadFont(resolver, cfg.Assets.Font)
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		opts.Font = ft
		opts.Text = render.DefaultTextStyle()
		opts.Text.Title = queueTitle(cfg.Source.Queue)
	}
	return render.New(opts)
}

// queueTitle turns a feed queue id such as "GPV5.1" into the dial caption.
func queueTitle(queue string) string {
	return "Черга " + strings.TrimPrefix(queue, "GPV")
}

// daemon holds the running clock and everything it talks to.
type daemon struct {
	cfg       *config.Config
	log       *logrus.Entry
	tracker   *status.Tracker
	widget    *widget.Widget
	sinks     display.Multi
	server    *web.Server
	publisher mqtt.Publisher
	positions *position.Store
	buttons   gpio.Reader
	calendar  *scheduler.Calendar
	now       func() time.Time
}

func newDaemon(cfg *config.Config, fs afero.Fs, logger *logrus.Logger) (*daemon, error) {
	renderer, err := newRenderer(cfg, fs)
	if err != nil {
		return nil, err
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Variant:         cfg.Variant,
		Queue:           cfg.Source.Queue,
		SourceURL:       cfg.Source.URL,
		DataIntervalMs:  cfg.Refresh.Data.Milliseconds(),
		FrameIntervalMs: cfg.Refresh.Frame.Milliseconds(),
		Broker:          cfg.MQTT.Broker,
		HTTPAddr:        cfg.HTTP.Addr,
	})
	d := &daemon{
		cfg:     cfg,
		log:     logging.Component(logger, "main"),
		tracker: tracker,
		now:     time.Now,
	}
	if cfg.Variant == string(render.Variant24) {
		d.positions = position.NewStore(fs, cfg.Position.File)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	if cfg.MQTT.Broker != "" {
		d.publisher = mqtt.NewRealPublisher(cfg.MQTT.Broker, mqtt.ClientID(), logging.Component(logger, "mqtt"))
	}

	var server *web.Server
	if cfg.HTTP.Addr != "" {
		server = web.New(web.Options{
			Addr:     cfg.HTTP.Addr,
			Tracker:  d.tracker,
			Limiter:  rate.NewLimiter(rate.Limit(cfg.HTTP.RefreshRate), cfg.HTTP.RefreshBurst),
			Gatherer: reg,
			Log:      logging.Component(logger, "web"),
		})
		d.server = server
		d.sinks = append(d.sinks, server)
	}
	if cfg.Output.PNG != "" {
		d.sinks = append(d.sinks, display.NewPNGFile(fs, cfg.Output.PNG))
	}
	if cfg.Output.EPaper {
		ep, err := display.OpenEPaper()
		if err != nil {
			return nil, fmt.Errorf("init e-paper: %w", err)
		}
		d.sinks = append(d.sinks, ep)
	}

	if cfg.GPIO.Enabled {
		r, err := gpio.NewRealReader(cfg.GPIO.PinRefresh, cfg.GPIO.PinDismiss)
		if err != nil {
			return nil, fmt.Errorf("init gpio: %w", err)
		}
		d.buttons = r
	}

	opts := widget.Options{
		Fetcher:       outage.NewHTTPFetcher(cfg.Source.URL, cfg.Source.Queue, cfg.Source.Timeout),
		Queue:         cfg.Source.Queue,
		Renderer:      renderer,
		Sink:          d.sinks,
		Tracker:       d.tracker,
		Metrics:       m,
		Log:           logging.Component(logger, "widget"),
		FetchTimeout:  cfg.Source.Timeout,
		DataInterval:  cfg.Refresh.Data,
		FrameInterval: cfg.Refresh.Frame,
		RetryDelay:    cfg.Refresh.Retry,
	}
	if d.publisher != nil {
		opts.Publisher = d.publisher
	}
	d.widget, err = widget.New(opts)
	if err != nil {
		return nil, err
	}
	if server != nil {
		server.SetWidget(d.widget)
	}
	if spec := cfg.Refresh.Rollover; spec != "" {
		d.calendar, err = scheduler.NewCalendar(spec, d.widget.Refresh, logging.Component(logger, "calendar"))
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// run drives the clock until a signal arrives or the widget is dismissed,
// then saves the position and announces the shutdown.
func (d *daemon) run(ctx context.Context, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.positions != nil {
		p := d.positions.Load()
		d.tracker.SetPosition(p.X, p.Y)
	} else {
		d.tracker.SetPosition(position.Default.X, position.Default.Y)
	}
	if net := readNetworkInfo(); net != nil {
		d.tracker.SetNetwork(net)
	}

	d.publishSystem("STARTUP", "")

	if d.server != nil {
		go func() {
			if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.log.WithError(err).Error("http server failed")
			}
		}()
		d.log.WithField("addr", d.cfg.HTTP.Addr).Info("http server listening")
	}

	// Background loops must stop before the resources they use are closed.
	var wg sync.WaitGroup
	if d.buttons != nil {
		ticker := time.NewTicker(d.cfg.GPIO.Poll)
		defer ticker.Stop()
		wg.Add(1)
		go func() {
			defer wg.Done()
			buttons.Watch(ctx, d.buttons, buttons.NewDetector(d.cfg.GPIO.Debounce), ticker.C, d.now, d.onPress, d.log.WithField("component", "buttons"))
		}()
	}
	if d.calendar != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.calendar.Run(ctx)
		}()
	}

	reasons := make(chan string, 1)
	go func() {
		select {
		case s := <-sig:
			d.log.WithField("signal", s).Info("shutting down")
			reasons <- signalName(s)
			cancel()
		case <-ctx.Done():
		}
	}()

	d.log.WithFields(logrus.Fields{
		"variant": d.cfg.Variant,
		"queue":   d.cfg.Source.Queue,
		"data":    d.cfg.Refresh.Data,
		"frame":   d.cfg.Refresh.Frame,
	}).Info("started")
	d.widget.Run(ctx)
	cancel()
	wg.Wait()

	reason := "CANCELLED"
	select {
	case <-d.widget.Dismissed():
		reason = "DISMISSED"
	default:
		select {
		case reason = <-reasons:
		default:
		}
	}

	var errs []error
	if d.positions != nil {
		snap := d.tracker.Snapshot()
		if err := d.positions.Save(position.Point{X: snap.PositionX, Y: snap.PositionY}); err != nil {
			d.log.WithError(err).Warn("position not saved")
		}
	}

	d.publishSystem("SHUTDOWN", reason)

	if err := d.sinks.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close displays: %w", err))
	}
	if d.server != nil {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.server.Shutdown(sctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		scancel()
	}
	if d.publisher != nil {
		d.publisher.Close()
	}
	if d.buttons != nil {
		if err := d.buttons.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gpio: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (d *daemon) onPress(p buttons.Press) {
	switch p.Button {
	case buttons.ButtonRefresh:
		d.widget.Refresh()
	case buttons.ButtonDismiss:
		d.widget.Dismiss()
	}
}

func (d *daemon) publishSystem(event, reason string) {
	if d.publisher == nil {
		return
	}
	if cs, ok := d.publisher.(mqtt.ConnectionStatus); ok {
		d.tracker.SetMQTTConnected(cs.IsConnected())
	}
	snap := d.tracker.Snapshot()
	err := d.publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		d.log.WithError(err).WithField("event", event).Warn("system event not published")
		return
	}
	d.log.WithField("event", event).Info("published system event")
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
