package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"foodshare/internal/auth"
	"foodshare/internal/db"
	"foodshare/internal/metrics"
	"foodshare/internal/middleware"
	"foodshare/internal/models"
	"foodshare/internal/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 100 << 10

var errInvalidBody = errors.New("invalid request body")

type Options struct {
	AllowedOrigins []string
	CookieSecure   bool
	// Gatherer backs /metrics. The route is not registered when nil.
	Gatherer prometheus.Gatherer
}

// Server carries the dependencies shared by every handler.
type Server struct {
	store    db.Store
	foods    db.Collection
	requests db.Collection
	tokens   *auth.TokenService
	metrics  *metrics.Collector
	logger   *zap.Logger
	opts     Options
}

func NewServer(store db.Store, tokens *auth.TokenService, collector *metrics.Collector, logger *zap.Logger, opts Options) *Server {
	return &Server{
		store:    store,
		foods:    store.Collection(models.FoodsCollection),
		requests: store.Collection(models.FoodRequestsCollection),
		tokens:   tokens,
		metrics:  collector,
		logger:   logger,
		opts:     opts,
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests for at
// most shutdownTimeout.
func (s *Server) Start(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api.Start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", zap.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api.Start: shutdown: %w", err)
	}
	return nil
}

// decodeDocument reads a JSON object body. An empty body decodes to an empty
// document.
func decodeDocument(w http.ResponseWriter, r *http.Request) (models.Document, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var doc models.Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Document{}, nil
		}
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: null document", errInvalidBody)
	}
	return doc, nil
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("rejected request body",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.Error(err),
	)
	utils.WriteMessage(w, http.StatusBadRequest, "invalid request body")
}

// storeFailure answers 500 for any store error, malformed ids included.
func (s *Server) storeFailure(w http.ResponseWriter, r *http.Request, collection, op string, err error) {
	s.logger.Error("store operation failed",
		zap.String("collection", collection),
		zap.String("operation", op),
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.Error(err),
	)
	s.metrics.StoreError(collection, op)
	utils.WriteMessage(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Food sharing Server is running")
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
