package handlers

import (
	"context"
	"net/http"
	"time"

	"expense-tracker/internal/errors"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// HealthCheckHandler reports whether the transaction store is reachable
type HealthCheckHandler struct {
	db *gorm.DB
}

func NewHealthCheckHandler(db *gorm.DB) *HealthCheckHandler {
	return &HealthCheckHandler{db: db}
}

// HealthResponse is the body of a healthy /health answer
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	LatencyMs int64  `json:"latencyMs"`
	Time      string `json:"time"`
}

// HealthCheck pings the database
// @Summary Health check
// @Description Reports API liveness and transaction store connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Transaction store unreachable"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	started := time.Now()
	if err := h.ping(ctx); err != nil {
		return SendError(c, errors.SystemServiceUnavailable, errors.WithDetails("database unreachable"))
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Database:  "up",
		LatencyMs: time.Since(started).Milliseconds(),
		Time:      time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthCheckHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
