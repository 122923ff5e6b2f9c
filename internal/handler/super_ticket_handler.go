package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

type SuperTicketHandler struct {
	app *app.App
}

func NewSuperTicketHandler(app *app.App) *SuperTicketHandler {
	return &SuperTicketHandler{
		app: app,
	}
}

type PurchaseSuperTicketRequest struct {
	Price decimal.Decimal `json:"price"`
}

type BookScheduleRequest struct {
	ScheduleID uint `json:"scheduleId" binding:"required"`
}

func (h *SuperTicketHandler) HandlePurchase(ctx *gin.Context) {
	var req PurchaseSuperTicketRequest
	// the body is optional, the default price applies without one
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respondBindError(ctx, err)
			return
		}
	}

	result, err := h.app.PurchaseWorkflow.PurchaseSuperTicket(ctx.Request.Context(), domain.PurchaseSuperTicketParams{
		UserID: currentUserID(ctx),
		Price:  req.Price,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, result)
}

func (h *SuperTicketHandler) HandleBookSchedule(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req BookScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	superTicket, err := h.app.SuperTicketService.GetSuperTicketByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if superTicket.UserID != currentUserID(ctx) && !isAdmin(ctx) {
		respondWithError(ctx, http.StatusForbidden, "Super ticket belongs to another user")
		return
	}

	superTicket, err = h.app.PurchaseWorkflow.BookSchedule(ctx.Request.Context(), id, req.ScheduleID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, superTicket)
}

func (h *SuperTicketHandler) HandleValidate(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	valid, err := h.app.SuperTicketService.ValidateSuperTicket(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"isValid": valid})
}

func (h *SuperTicketHandler) HandleMine(ctx *gin.Context) {
	superTickets, err := h.app.SuperTicketService.GetSuperTicketsByUserID(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"superTickets": superTickets})
}

func (h *SuperTicketHandler) HandleList(ctx *gin.Context) {
	p, ok := bindPagination(ctx)
	if !ok {
		return
	}
	superTickets, err := h.app.SuperTicketService.ListSuperTickets(ctx.Request.Context(), p)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, superTickets)
}

func (h *SuperTicketHandler) HandleGet(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	superTicket, err := h.app.SuperTicketService.GetSuperTicketByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, superTicket)
}

func (h *SuperTicketHandler) HandleUpdate(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req domain.UpdateSuperTicketParams
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	superTicket, err := h.app.SuperTicketService.UpdateSuperTicket(ctx.Request.Context(), id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, superTicket)
}

func (h *SuperTicketHandler) HandleDelete(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	superTicket, err := h.app.SuperTicketService.DeleteSuperTicket(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, superTicket)
}
