// internal/api/handler/wallet.go
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"workid-wallet/internal/api/types"
	"workid-wallet/internal/domain"
	"workid-wallet/internal/service"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	responder
	service service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// AmountRequest represents the request body for deposit and withdraw.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GetWallet returns the user's wallet, creating an empty one on first access.
// GET /wallets/{userID}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := uuidParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, err := h.service.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, wallet)
}

// Deposit handles the deposit money request.
// POST /wallets/{userID}/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Deposit successful", h.service.Deposit)
}

// Withdraw handles the withdraw money request.
// POST /wallets/{userID}/withdraw
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Withdrawal successful", h.service.Withdraw)
}

type balanceOp func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error)

func (h *WalletHandler) mutate(w http.ResponseWriter, r *http.Request, message string, op balanceOp) {
	userID, err := uuidParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req AmountRequest
	if !h.decode(w, r, &req) {
		return
	}

	wallet, transaction, err := op(r.Context(), userID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        message,
		"wallet_id":      wallet.ID,
		"new_balance":    wallet.Balance,
		"transaction_id": transaction.ID,
	})
}

// TransferRequest represents the request body for a wallet-to-wallet payment.
type TransferRequest struct {
	FromUserID string          `json:"from_user_id" validate:"required,uuid"`
	ToUserID   string          `json:"to_user_id" validate:"required,uuid,nefield=FromUserID"`
	Amount     decimal.Decimal `json:"amount"`
}

// Transfer handles the transfer money request.
// POST /transfers
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !h.decode(w, r, &req) {
		return
	}

	fromWallet, toWallet, transaction, err := h.service.Pay(r.Context(), mustUUID(req.FromUserID), mustUUID(req.ToUserID), req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":                 "Transfer successful",
		"transaction_id":          transaction.ID,
		"from_wallet_new_balance": fromWallet.Balance,
		"to_wallet_new_balance":   toWallet.Balance,
	})
}

// GetSummary handles the wallet summary request.
// GET /wallets/{userID}/summary
func (h *WalletHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := uuidParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, summary)
}

// GetTransactionHistory handles the get transaction history request.
// GET /wallets/{userID}/transactions
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := uuidParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	// Parse query parameters for pagination
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	transactions, totalCount, err := h.service.GetTransactionHistory(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
