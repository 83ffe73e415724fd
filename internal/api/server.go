package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dispenagua/kiosk/internal/config"
	"github.com/dispenagua/kiosk/internal/kiosk"
	"github.com/dispenagua/kiosk/internal/vending"
)

// Kiosk is the controller behind the page
type Kiosk interface {
	ScreenSource
	Initialize(ctx context.Context)
	Show(view kiosk.View)
	FetchProducts(ctx context.Context)
	SelectProduct(ctx context.Context, p vending.Product)
	SubmitNewProduct(ctx context.Context, form kiosk.ProductForm)
	BackToProducts(ctx context.Context)
	Snapshot() kiosk.Screen
	Product(id vending.ProductID) (vending.Product, bool)
	Attempts() []kiosk.Attempt
}

// StatusSource reports the backend connection
type StatusSource interface {
	Status() vending.ConnectionStatus
}

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	kiosk   Kiosk
	backend StatusSource
	logs    *LogBuffer
	hub     *Hub
	metrics http.Handler
	log     *log.Entry
	router  *mux.Router
	started time.Time
}

// Options carries the optional parts of a Server
type Options struct {
	Backend StatusSource
	Logs    *LogBuffer
	Metrics http.Handler
	Logger  *log.Entry
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, k Kiosk, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewEntry(log.StandardLogger())
	}
	if opts.Logs == nil {
		opts.Logs = NewLogBuffer(cfg.Kiosk.LogBufferSize)
	}

	s := &Server{
		config:  cfg,
		kiosk:   k,
		backend: opts.Backend,
		logs:    opts.Logs,
		metrics: opts.Metrics,
		log:     opts.Logger.WithField("component", "http"),
		router:  mux.NewRouter(),
		started: time.Now(),
	}
	s.hub = NewHub(k, opts.Logger)

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestLogger)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)

	// Screen
	s.router.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/api/init", s.handleInit).Methods(http.MethodPost)
	s.router.HandleFunc("/api/view/{view}", s.handleShow).Methods(http.MethodPost)
	s.router.HandleFunc("/api/back", s.handleBack).Methods(http.MethodPost)

	// Products
	s.router.HandleFunc("/api/products/refresh", s.handleRefresh).Methods(http.MethodPost)
	s.router.HandleFunc("/api/products/{id}/select", s.handleSelect).Methods(http.MethodPost)
	s.router.HandleFunc("/api/products", s.handleCreate).Methods(http.MethodPost)

	// Diagnostics
	s.router.HandleFunc("/api/attempts", s.handleAttempts).Methods(http.MethodGet)
	s.router.HandleFunc("/api/logs", s.handleLogs).Methods(http.MethodGet)
	s.router.HandleFunc("/api/logs", s.handleClearLogs).Methods(http.MethodDelete)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	s.router.Handle("/ws", s.hub).Methods(http.MethodGet)

	// Web UI
	s.router.HandleFunc("/", s.handleUI).Methods(http.MethodGet)
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// requestLogger tags each request with an id and logs it once done
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.log.WithFields(log.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"elapsed":    time.Since(start).String(),
		})
		// polling endpoints would flood the console
		if r.Method == http.MethodGet {
			entry.Debug("Request")
		} else {
			entry.Info("Request")
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps WebSocket upgrades working through the recorder
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// detached keeps backend calls alive if the page drops the request
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleStatus returns server status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	screen := s.kiosk.Snapshot()

	resp := map[string]interface{}{
		"status":   "running",
		"view":     screen.View,
		"attempts": len(s.kiosk.Attempts()),
		"clients":  s.hub.Clients(),
		"uptime":   time.Since(s.started).Round(time.Second).String(),
	}
	if s.backend != nil {
		resp["backend"] = s.backend.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.kiosk.Snapshot())
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	s.kiosk.Initialize(detached(r))
	writeJSON(w, http.StatusOK, s.kiosk.Snapshot())
}

// handleShow switches the view without touching the backend. The payment
// terminal uses it to move the page to the dispensing view.
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	view, err := kiosk.ParseView(mux.Vars(r)["view"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.kiosk.Show(view)
	writeJSON(w, http.StatusOK, s.kiosk.Snapshot())
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.kiosk.BackToProducts(detached(r))
	writeJSON(w, http.StatusOK, s.kiosk.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.kiosk.FetchProducts(detached(r))
	writeJSON(w, http.StatusOK, s.kiosk.Snapshot())
}

// handleSelect starts the payment flow for a product currently on screen
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := vending.ProductID(mux.Vars(r)["id"])
	p, ok := s.kiosk.Product(id)
	if !ok {
		writeError(w, http.StatusNotFound, "product not listed: "+string(id))
		return
	}
	s.kiosk.SelectProduct(detached(r), p)
	writeJSON(w, http.StatusOK, s.kiosk.Snapshot())
}

// handleCreate accepts the add-product form as JSON or form-encoded values
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form kiosk.ProductForm

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		form = kiosk.ProductForm{
			Name:   r.PostForm.Get("name"),
			Volume: r.PostForm.Get("volume"),
			Price:  r.PostForm.Get("price"),
		}
	}

	s.kiosk.SubmitNewProduct(detached(r), form)
	writeJSON(w, http.StatusOK, s.kiosk.Snapshot())
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": s.kiosk.Attempts(),
	})
}

// handleLogs returns the buffered log entries, filtered by ?level=error,warn
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	var levels []string
	if l := r.URL.Query().Get("level"); l != "" {
		levels = strings.Split(l, ",")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": s.logs.Entries(levels),
	})
}

// handleClearLogs empties the developer console
func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.logs.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleUI serves the web UI
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(webUI))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
