package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

type AuditoriumHandler struct {
	app *app.App
}

func NewAuditoriumHandler(app *app.App) *AuditoriumHandler {
	return &AuditoriumHandler{
		app: app,
	}
}

type CreateAuditoriumRequest struct {
	Name               string `json:"name" binding:"required,notblank"`
	Description        string `json:"description"`
	ImageURL           string `json:"imageUrl" binding:"omitempty,url"`
	Type               string `json:"type"`
	Capacity           int    `json:"capacity" binding:"required"`
	HandicapAccessible bool   `json:"handicapAccessible"`
	Maintenance        bool   `json:"maintenance"`
}

func (h *AuditoriumHandler) HandleCreate(ctx *gin.Context) {
	var req CreateAuditoriumRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	var auditorium model.Auditorium
	if err := copier.Copy(&auditorium, &req); err != nil {
		respondServiceError(ctx, err)
		return
	}
	if err := h.app.AuditoriumService.CreateAuditorium(ctx.Request.Context(), &auditorium); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, auditorium)
}

func (h *AuditoriumHandler) HandleList(ctx *gin.Context) {
	p, ok := bindPagination(ctx)
	if !ok {
		return
	}
	auditoriums, err := h.app.AuditoriumService.ListAuditoriums(ctx.Request.Context(), p)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, auditoriums)
}

func (h *AuditoriumHandler) HandleGet(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	auditorium, err := h.app.AuditoriumService.GetAuditoriumByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, auditorium)
}

func (h *AuditoriumHandler) HandleUpdate(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req domain.UpdateAuditoriumParams
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	auditorium, err := h.app.AuditoriumService.UpdateAuditorium(ctx.Request.Context(), id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, auditorium)
}

func (h *AuditoriumHandler) HandleDelete(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	auditorium, err := h.app.AuditoriumService.DeleteAuditorium(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, auditorium)
}

// HandleSchedule lists the auditorium's week starting at :startDate.
func (h *AuditoriumHandler) HandleSchedule(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	start, ok := dateParam(ctx, "startDate", h.app.Config.Timezone, false)
	if !ok {
		return
	}

	sales, err := h.app.AuditoriumService.GetAuditoriumSchedule(ctx.Request.Context(), id, start)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if len(sales) == 0 {
		respondWithError(ctx, http.StatusNotFound, "Schedule not available")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"schedules": sales})
}
