package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

const qrCodeSize = 256

type TicketHandler struct {
	app *app.App
}

func NewTicketHandler(app *app.App) *TicketHandler {
	return &TicketHandler{
		app: app,
	}
}

type PurchaseTicketRequest struct {
	ScheduleID uint            `json:"scheduleId" binding:"required"`
	Price      decimal.Decimal `json:"price"`
}

func (h *TicketHandler) HandlePurchase(ctx *gin.Context) {
	var req PurchaseTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	result, err := h.app.PurchaseWorkflow.PurchaseTicket(ctx.Request.Context(), domain.PurchaseTicketParams{
		UserID:     currentUserID(ctx),
		ScheduleID: req.ScheduleID,
		Price:      req.Price,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, result)
}

func (h *TicketHandler) HandleMine(ctx *gin.Context) {
	tickets, err := h.app.TicketService.GetTicketsByUserID(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// HandleValidate admits the ticket at the door and spends it, so only the
// owner or an admin may call it. An invalid ticket answers 400 and an
// unknown one 404, both with isValidated false.
func (h *TicketHandler) HandleValidate(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	ticket, err := h.app.TicketService.GetTicketByID(ctx.Request.Context(), id)
	if service.Kind(err) == service.ErrNotFound {
		ctx.JSON(http.StatusNotFound, gin.H{"isValidated": false})
		return
	}
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if ticket.UserID != currentUserID(ctx) && !isAdmin(ctx) {
		respondWithError(ctx, http.StatusForbidden, "Ticket belongs to another user")
		return
	}

	valid, err := h.app.TicketService.ValidateTicket(ctx.Request.Context(), id)
	switch {
	case service.Kind(err) == service.ErrNotFound:
		ctx.JSON(http.StatusNotFound, gin.H{"isValidated": false})
	case err != nil:
		respondServiceError(ctx, err)
	case !valid:
		ctx.JSON(http.StatusBadRequest, gin.H{"isValidated": false})
	default:
		ctx.JSON(http.StatusOK, gin.H{"isValidated": true})
	}
}

// HandleQRCode renders the ticket as a PNG QR code for its owner.
func (h *TicketHandler) HandleQRCode(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	ticket, err := h.app.TicketService.GetTicketByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if ticket.UserID != currentUserID(ctx) && !isAdmin(ctx) {
		respondWithError(ctx, http.StatusForbidden, "Ticket belongs to another user")
		return
	}
	if ticket.Used {
		respondWithError(ctx, http.StatusForbidden, "Ticket already used")
		return
	}

	png, err := qrcode.Encode(fmt.Sprintf("cinema-ticket:%d:%d", ticket.ID, ticket.ScheduleID), qrcode.Medium, qrCodeSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}

func (h *TicketHandler) HandleList(ctx *gin.Context) {
	p, ok := bindPagination(ctx)
	if !ok {
		return
	}
	tickets, err := h.app.TicketService.ListTickets(ctx.Request.Context(), p)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) HandleGet(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	ticket, err := h.app.TicketService.GetTicketByID(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) HandleUpdate(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req domain.UpdateTicketParams
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	ticket, err := h.app.TicketService.UpdateTicket(ctx.Request.Context(), id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) HandleDelete(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	ticket, err := h.app.TicketService.DeleteTicket(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ticket)
}
