// internal/api/handler/payment.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/service"
)

// PaymentHandler handles gateway payment requests and callbacks.
type PaymentHandler struct {
	responder
	service service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// CreatePaymentRequest represents the request body for opening a payment.
type CreatePaymentRequest struct {
	UserID   string          `json:"user_id" validate:"required,uuid"`
	Amount   decimal.Decimal `json:"amount"`
	Provider string          `json:"provider" validate:"omitempty,max=32"`
}

// WebhookRequest is a gateway callback. Status defaults to success.
type WebhookRequest struct {
	PaymentID         string `json:"payment_id" validate:"required,uuid"`
	ProviderReference string `json:"provider_reference" validate:"required,max=128"`
	Signature         string `json:"signature" validate:"required,hexadecimal"`
	Status            string `json:"status" validate:"omitempty,oneof=success failed"`
}

// Create handles the payment creation request.
// POST /payments
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	payment, err := h.service.CreatePayment(r.Context(), mustUUID(req.UserID), req.Amount, req.Provider)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, payment)
}

// Get handles the payment lookup.
// GET /payments/{paymentID}
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuidParam(r, "paymentID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	payment, err := h.service.Get(r.Context(), paymentID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, payment)
}

// Webhook handles a signed gateway callback. Redelivered confirmations
// return the settled payment with 200.
// POST /payments/webhook
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if !h.decode(w, r, &req) {
		return
	}

	paymentID := mustUUID(req.PaymentID)
	var (
		payment *domain.Payment
		err     error
	)
	if req.Status == string(domain.PaymentStatusFailed) {
		payment, err = h.service.FailPayment(r.Context(), paymentID, req.ProviderReference, req.Signature)
	} else {
		payment, err = h.service.ConfirmPayment(r.Context(), paymentID, req.ProviderReference, req.Signature)
	}
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, payment)
}

// SimulateSuccess drives the mock gateway for a pending payment.
// POST /payments/{paymentID}/simulate-success
func (h *PaymentHandler) SimulateSuccess(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuidParam(r, "paymentID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	payment, err := h.service.SimulateSuccess(r.Context(), paymentID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, payment)
}
