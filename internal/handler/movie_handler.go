package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

type MovieHandler struct {
	app *app.App
}

func NewMovieHandler(app *app.App) *MovieHandler {
	return &MovieHandler{
		app: app,
	}
}

type CreateMovieRequest struct {
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
	Duration    int    `json:"duration" binding:"required"`
}

func (h *MovieHandler) HandleCreate(ctx *gin.Context) {
	var req CreateMovieRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	var movie model.Movie
	if err := copier.Copy(&movie, &req); err != nil {
		respondServiceError(ctx, err)
		return
	}
	if err := h.app.MovieService.CreateMovie(ctx.Request.Context(), &movie); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) HandleList(ctx *gin.Context) {
	p, ok := bindPagination(ctx)
	if !ok {
		return
	}
	movies, err := h.app.MovieService.ListMovies(ctx.Request.Context(), p)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, movies)
}

// HandleGet returns the movie together with the ids of its schedules.
func (h *MovieHandler) HandleGet(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	movie, err := h.app.MovieService.GetMovieByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	scheduleIDs, err := h.app.ScheduleService.GetSchedulesByMovieID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"movie": movie, "scheduleIds": scheduleIDs})
}

func (h *MovieHandler) HandleUpdate(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req domain.UpdateMovieParams
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	movie, err := h.app.MovieService.UpdateMovie(ctx.Request.Context(), id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) HandleDelete(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	movie, err := h.app.MovieService.DeleteMovie(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) HandleSchedulesBetween(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	start, ok := dateParam(ctx, "startDate", h.app.Config.Timezone, false)
	if !ok {
		return
	}
	end, ok := dateParam(ctx, "endDate", h.app.Config.Timezone, true)
	if !ok {
		return
	}

	movie, err := h.app.MovieService.GetMovieByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	schedules, err := h.app.MovieService.GetMovieScheduleBetween(ctx.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"movie": movie, "schedules": schedules})
}
