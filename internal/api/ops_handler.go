package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/metrics"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/redact"
)

// DefaultPingTimeout bounds the database probe made by the health endpoint.
const DefaultPingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// MetricsSource exposes counters for the metrics endpoint.
type MetricsSource interface {
	Snapshot() metrics.Snapshot
}

// OpsHandler serves health and metrics endpoints.
type OpsHandler struct {
	db          Pinger
	metrics     MetricsSource
	version     string
	pingTimeout time.Duration
	probes      singleflight.Group
	logger      *slog.Logger
}

// NewOpsHandler creates an OpsHandler. A nil db reports the in-memory store.
func NewOpsHandler(db Pinger, source MetricsSource, version string, logger *slog.Logger) *OpsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpsHandler{
		db:          db,
		metrics:     source,
		version:     version,
		pingTimeout: DefaultPingTimeout,
		logger:      logger.With(slog.String("component", "ops_handler")),
	}
}

// Health handles GET /ops/health. Concurrent probes share one database ping.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Version: h.version, Database: "memory"}
	if h.db == nil {
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
		return
	}

	_, err, _ := h.probes.Do("database", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.pingTimeout)
		defer cancel()
		return nil, h.db.PingContext(ctx)
	})
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("database health check failed",
			slog.String("error", redact.Error(err)))
		resp.Status = "unhealthy"
		resp.Database = "unavailable"
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Database = "ok"
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Metrics handles GET /ops/metrics.
func (h *OpsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	snapshot := metrics.Snapshot{StatusCodes: map[string]int64{}}
	if h.metrics != nil {
		snapshot = h.metrics.Snapshot()
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}
