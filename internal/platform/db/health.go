package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStatus is the payload of the database health endpoint.
type PoolStatus struct {
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
	Total    int32  `json:"total_conns"`
	Idle     int32  `json:"idle_conns"`
	InUse    int32  `json:"in_use_conns"`
	Max      int32  `json:"max_conns"`
}

// HealthHandler pings the database with a short deadline and reports the
// pool state alongside the verdict.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		stat := pool.Stat()
		status := PoolStatus{
			Database: "up",
			Total:    stat.TotalConns(),
			Idle:     stat.IdleConns(),
			InUse:    stat.AcquiredConns(),
			Max:      stat.MaxConns(),
		}

		if err := pool.Ping(ctx); err != nil {
			status.Database = "down"
			status.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		return c.JSON(http.StatusOK, status)
	}
}
