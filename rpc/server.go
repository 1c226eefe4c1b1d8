package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"treasurechain/core/types"
	"treasurechain/integrations/scoreboard"
	"treasurechain/native/params"
	"treasurechain/native/token"
	"treasurechain/native/treasure"
	"treasurechain/observability"
)

const (
	maxRequestBytes = 1 << 20 // 1 MiB
	shutdownTimeout = 10 * time.Second
)

// Backend is the state surface the HTTP API serves.
type Backend interface {
	Apply(tx *types.Transaction) (*types.Receipt, error)
	Treasure(key uint64) (*treasure.Treasure, error)
	Treasures() ([]*treasure.Treasure, error)
	Expired(now int64) ([]uint64, error)
	Queue(treasureKey uint64) ([]*treasure.SponsorAward, error)
	Award(key uint64) (*treasure.SponsorAward, error)
	Tickets(kind treasure.TicketKind) ([]*treasure.Ticket, error)
	Results() ([]*treasure.Result, error)
	Crew(user [20]byte) (*treasure.Crew, error)
	Prices() (check, unlock types.Asset, err error)
	Balance(owner [20]byte, code string) (types.Asset, error)
	TokenStats(code string) (*token.Stats, error)
	Param(key string) (params.Setting, bool, error)
	Params() ([]params.Setting, error)
	Account(addr [20]byte) (*types.Account, error)
	Height() (uint64, error)
}

// Leaderboard is an optional read model of settlement results.
type Leaderboard interface {
	Leaders(ctx context.Context, limit int) ([]scoreboard.Leader, error)
}

// Server exposes the processor over HTTP.
type Server struct {
	backend     Backend
	leaderboard Leaderboard
	limiter     *RateLimiter
	logger      *slog.Logger
}

func NewServer(backend Backend, limit RateLimit, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		backend: backend,
		limiter: NewRateLimiter(limit, logger),
		logger:  logger,
	}
}

// SetLeaderboard enables GET /leaderboard.
func (s *Server) SetLeaderboard(lb Leaderboard) { s.leaderboard = lb }

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Post("/tx", s.handleSubmit)
		r.Get("/height", s.handleHeight)
		r.Get("/treasures", s.handleTreasures)
		r.Get("/treasures/expired", s.handleExpired)
		r.Get("/treasures/{id}", s.handleTreasure)
		r.Get("/treasures/{id}/queue", s.handleQueue)
		r.Get("/awards/{id}", s.handleAward)
		r.Get("/prices", s.handlePrices)
		r.Get("/balances/{addr}/{symbol}", s.handleBalance)
		r.Get("/stats/{symbol}", s.handleStats)
		r.Get("/accounts/{addr}", s.handleAccount)
		r.Get("/crew/{addr}", s.handleCrew)
		r.Get("/tickets/{kind}", s.handleTickets)
		r.Get("/results", s.handleResults)
		r.Get("/params", s.handleParams)
		r.Get("/params/{key}", s.handleParam)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
	return r
}

// observe records per-route metrics using the matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.ModuleMetrics().Observe("rpc", r.Method+" "+route, status, time.Since(start))
	})
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
