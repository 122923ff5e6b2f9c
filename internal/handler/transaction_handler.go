package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qs-lzh/cinema-booking/internal/app"
)

type TransactionHandler struct {
	app *app.App
}

func NewTransactionHandler(app *app.App) *TransactionHandler {
	return &TransactionHandler{
		app: app,
	}
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func (h *TransactionHandler) HandleDeposit(ctx *gin.Context) {
	var req AmountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := h.app.LedgerService.Deposit(ctx.Request.Context(), currentUserID(ctx), req.Amount)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if user == nil {
		respondWithError(ctx, http.StatusNotFound, "User not found")
		return
	}
	ctx.JSON(http.StatusOK, BalanceResponse{Balance: user.Balance})
}

// HandleWithdraw answers 402 when the ledger refuses the withdrawal; the
// ledger does not say whether the user is missing or short of funds.
func (h *TransactionHandler) HandleWithdraw(ctx *gin.Context) {
	var req AmountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := h.app.LedgerService.Withdraw(ctx.Request.Context(), currentUserID(ctx), req.Amount)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if user == nil {
		respondWithError(ctx, http.StatusPaymentRequired, "User not found or insufficient balance")
		return
	}
	ctx.JSON(http.StatusOK, BalanceResponse{Balance: user.Balance})
}

func (h *TransactionHandler) HandleBalance(ctx *gin.Context) {
	balance, err := h.app.LedgerService.GetBalance(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if balance == nil {
		respondWithError(ctx, http.StatusNotFound, "User not found")
		return
	}
	ctx.JSON(http.StatusOK, BalanceResponse{Balance: *balance})
}

func (h *TransactionHandler) HandleMine(ctx *gin.Context) {
	transactions, err := h.app.LedgerService.GetUserTransactions(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (h *TransactionHandler) HandleList(ctx *gin.Context) {
	p, ok := bindPagination(ctx)
	if !ok {
		return
	}
	transactions, err := h.app.LedgerService.ListTransactions(ctx.Request.Context(), p)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, transactions)
}
