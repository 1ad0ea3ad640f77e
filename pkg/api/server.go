package api

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// Config holds server settings. Route and reachable queries run
// CPU-bound searches over the in-memory graph, so the concurrency cap
// follows the core count rather than an IO pool size.
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigin     string
}

// DefaultConfig returns settings sized for graph query workloads. The
// write timeout leaves room for large reachable responses.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:           addr,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxConcurrent:  runtime.NumCPU(),
		CORSOrigin:     "",
	}
}

// NewServer wires the endpoints behind the shared middleware chain.
func NewServer(cfg Config, handlers *Handlers) *http.Server {
	mux := http.NewServeMux()
	limiter := make(chan struct{}, cfg.MaxConcurrent)

	register := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, chain(h, cfg, limiter))
	}
	register("POST /api/v1/route", handlers.HandleRoute)
	register("POST /api/v1/reachable", handlers.HandleReachable)
	register("GET /api/v1/health", handlers.HandleHealth)
	register("GET /api/v1/stats", handlers.HandleStats)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until SIGINT/SIGTERM,
// then drains in-flight queries before returning.
func ListenAndServe(srv *http.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// chain assembles the middleware stack: logging outermost, then
// response headers, the query limiter, panic recovery and the
// per-request deadline around the handler itself.
func chain(h http.HandlerFunc, cfg Config, limiter chan struct{}) http.HandlerFunc {
	h = withDeadline(h, cfg.RequestTimeout)
	h = withRecovery(h)
	h = withLimiter(h, limiter)
	h = withHeaders(h, cfg.CORSOrigin)
	return withLogging(h)
}

func withLogging(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	}
}

func withHeaders(h http.HandlerFunc, corsOrigin string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		if corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		}
		h(w, r)
	}
}

// withLimiter rejects requests beyond the concurrency cap instead of
// queueing them; a saturated limiter means every core is already
// searching.
func withLimiter(h http.HandlerFunc, limiter chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case limiter <- struct{}{}:
			defer func() { <-limiter }()
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		h(w, r)
	}
}

func withRecovery(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
			}
		}()
		h(w, r)
	}
}

func withDeadline(h http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h(w, r.WithContext(ctx))
	}
}
