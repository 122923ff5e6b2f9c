package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/cinema-booking/internal/app"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	app *app.App
}

func NewHealthHandler(app *app.App) *HealthHandler {
	return &HealthHandler{
		app: app,
	}
}

// HandleHealth reports 503 when the database does not answer a ping.
func (h *HealthHandler) HandleHealth(ctx *gin.Context) {
	if h.app.DB != nil {
		sqlDB, err := h.app.DB.DB()
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
			defer cancel()
			err = sqlDB.PingContext(pingCtx)
		}
		if err != nil {
			ctx.Error(err)
			respondWithError(ctx, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
