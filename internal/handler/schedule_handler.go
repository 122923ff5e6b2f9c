package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

type ScheduleHandler struct {
	app *app.App
}

func NewScheduleHandler(app *app.App) *ScheduleHandler {
	return &ScheduleHandler{
		app: app,
	}
}

func (h *ScheduleHandler) HandleCreate(ctx *gin.Context) {
	var req domain.CreateScheduleParams
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	schedule, err := h.app.ScheduleService.CreateSchedule(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, schedule)
}

func (h *ScheduleHandler) HandleList(ctx *gin.Context) {
	p, ok := bindPagination(ctx)
	if !ok {
		return
	}
	schedules, err := h.app.ScheduleService.ListSchedules(ctx.Request.Context(), p)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, schedules)
}

func (h *ScheduleHandler) HandleGet(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	detail, err := h.app.ScheduleService.GetScheduleByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// HandleBetween serves /schedules/:id/:endDate. gin allows one wildcard
// name per segment, so the start date arrives under "id".
func (h *ScheduleHandler) HandleBetween(ctx *gin.Context) {
	start, ok := dateParam(ctx, "id", h.app.Config.Timezone, false)
	if !ok {
		return
	}
	end, ok := dateParam(ctx, "endDate", h.app.Config.Timezone, true)
	if !ok {
		return
	}

	sales, err := h.app.ScheduleService.GetScheduleBetween(ctx.Request.Context(), start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"schedules": sales})
}

func (h *ScheduleHandler) HandleUpdate(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req domain.UpdateScheduleParams
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	schedule, err := h.app.ScheduleService.UpdateSchedule(ctx.Request.Context(), id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) HandleDelete(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	schedule, err := h.app.ScheduleService.DeleteSchedule(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, schedule)
}
