package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jarvis/internal/domain"
)

// HTTPSource accepts utterances over HTTP instead of a microphone: recorded
// audio on POST /utterance and pre-transcribed text on POST /text. Both feed
// the same sink the microphone would.
type HTTPSource struct {
	addr      string
	authToken string
	server    *http.Server
	mux       *http.ServeMux
	limiter   *visitorLimiter
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	sink    domain.UtteranceSink
	stats   domain.QueueStats
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:      addr,
		authToken: authToken,
		mux:       http.NewServeMux(),
		limiter:   newVisitorLimiter(30, time.Minute), // 30 requests per minute per IP
		logger:    logger,
	}
	h.mux.HandleFunc("POST /utterance", h.limiter.wrap(h.authorized(h.handleUtterance)))
	h.mux.HandleFunc("POST /text", h.limiter.wrap(h.authorized(h.handleText)))
	// No rate limiting or auth on the health check.
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

// SetStats wires queue diagnostics into the health endpoint.
func (h *HTTPSource) SetStats(stats domain.QueueStats) {
	h.mu.Lock()
	h.stats = stats
	h.mu.Unlock()
}

func (h *HTTPSource) Start(_ context.Context, sink domain.UtteranceSink) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}
	h.sink = sink

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("HTTP utterance server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.running = false
	return nil
}

// Handler exposes the mux for tests.
func (h *HTTPSource) Handler() http.Handler {
	return h.mux
}

func (h *HTTPSource) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != h.authToken {
				h.logger.Warn("unauthorized request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (h *HTTPSource) currentSink() domain.UtteranceSink {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sink
}

func (h *HTTPSource) handleUtterance(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 10*1024*1024))
	if err != nil {
		h.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	sink := h.currentSink()
	if sink == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	u := domain.Utterance{ID: uuid.NewString(), Audio: data, CapturedAt: time.Now()}
	if !sink.Offer(u) {
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received audio via HTTP", "id", u.ID, "bytes", len(data))
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, `{"status":"received","id":"%s","bytes":%d}`, u.ID, len(data))
}

func (h *HTTPSource) handleText(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	text := strings.TrimSpace(string(data))
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	sink := h.currentSink()
	if sink == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	u := domain.Utterance{ID: uuid.NewString(), Text: text, CapturedAt: time.Now()}
	if !sink.Offer(u) {
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received text command via HTTP", "id", u.ID, "text", text)
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, `{"status":"received","id":"%s"}`, u.ID)
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	running := h.running
	stats := h.stats
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	queued, dropped := 0, uint64(0)
	if stats != nil {
		queued = stats.Len()
		dropped = stats.Dropped()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t,"queued":%d,"dropped":%d}`,
		status, running, queued, dropped)
}
