// Package web provides the HTTP surface of the power-clock daemon: the page
// showing the clock, the latest frame, status JSON, metrics and a websocket
// that announces new frames.
package web

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/sweeney/power-clock/internal/position"
	"github.com/sweeney/power-clock/internal/status"
)

// Widget is the part of the running clock the server controls.
type Widget interface {
	Frame() *image.RGBA
	Refresh()
	Dismiss()
}

// Options configures a Server. Tracker is required; Widget must be set,
// here or with SetWidget, before the server starts serving.
type Options struct {
	Addr    string
	Tracker *status.Tracker
	Widget  Widget
	// Limiter bounds POST /refresh. Nil allows every request.
	Limiter *rate.Limiter
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Log      *logrus.Entry
}

// FrameMessage is pushed to websocket clients for every new frame.
type FrameMessage struct {
	Frame int64  `json:"frame"`
	At    string `json:"at"`
}

// Server serves the clock page over HTTP. It is also a display sink: every
// frame shown is announced to websocket clients.
type Server struct {
	httpServer *http.Server
	opts       Options
	log        *logrus.Entry

	mu      sync.Mutex
	seq     int64
	subs    map[chan FrameMessage]struct{}
	done    chan struct{}
	closing sync.Once
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		opts: opts,
		log:  opts.Log,
		subs: make(map[chan FrameMessage]struct{}),
		done: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /index.html", s.handleIndex)
	mux.HandleFunc("GET /index.json", s.handleJSON)
	mux.HandleFunc("GET /frame.png", s.handleFrame)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("POST /position", s.handlePosition)
	mux.HandleFunc("POST /dismiss", s.handleDismiss)
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SetWidget attaches the widget when it is built after the server, which
// is the case when the server is one of the widget's sinks.
func (s *Server) SetWidget(w Widget) {
	s.opts.Widget = w
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	return s.httpServer.Shutdown(ctx)
}

// Show announces a new frame to websocket clients. Slow clients miss
// intermediate announcements rather than blocking the frame task.
func (s *Server) Show(_ context.Context, _ image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	msg := FrameMessage{Frame: s.seq, At: time.Now().UTC().Format(time.RFC3339)}
	for ch := range s.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Close disconnects websocket clients.
func (s *Server) Close() error {
	s.closing.Do(func() { close(s.done) })
	return nil
}

func (s *Server) subscribe() chan FrameMessage {
	ch := make(chan FrameMessage, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan FrameMessage) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func (s *Server) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.opts.Tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		s.log.WithError(err).Warn("render index")
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.opts.Tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame := s.opts.Widget.Frame()
	if frame == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, frame); err != nil {
		s.log.WithError(err).Warn("encode frame")
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.opts.Limiter != nil && !s.opts.Limiter.Allow() {
		http.Error(w, "refresh rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	s.log.Info("refresh requested over http")
	s.opts.Widget.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := position.Parse(string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.opts.Tracker.SetPosition(p.X, p.Y)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.log.Info("dismiss requested over http")
	s.opts.Widget.Dismiss()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients never send; CloseRead handles their close frames.
	ctx := conn.CloseRead(r.Context())
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for {
		select {
		case msg := <-ch:
			data, _ := json.Marshal(msg)
			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		case <-s.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-ctx.Done():
			return
		}
	}
}
