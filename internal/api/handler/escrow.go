// internal/api/handler/escrow.go
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/service"
)

// EscrowHandler handles HTTP requests for job escrows.
type EscrowHandler struct {
	responder
	service service.EscrowService
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(svc service.EscrowService, logger *slog.Logger) *EscrowHandler {
	return &EscrowHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// FundEscrowRequest represents the request body for funding an escrow.
type FundEscrowRequest struct {
	JobID      string          `json:"job_id" validate:"required,uuid"`
	EmployerID string          `json:"employer_id" validate:"required,uuid"`
	WorkerID   string          `json:"worker_id" validate:"required,uuid,nefield=EmployerID"`
	Amount     decimal.Decimal `json:"amount"`
}

// ResolveEscrowRequest identifies the employer releasing or refunding.
type ResolveEscrowRequest struct {
	EmployerID string `json:"employer_id" validate:"required,uuid"`
}

// Fund handles the escrow funding request.
// POST /escrows
func (h *EscrowHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req FundEscrowRequest
	if !h.decode(w, r, &req) {
		return
	}

	escrow, err := h.service.Fund(r.Context(), mustUUID(req.JobID), mustUUID(req.EmployerID), mustUUID(req.WorkerID), req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, escrow)
}

// Get handles the escrow lookup.
// GET /escrows/{escrowID}
func (h *EscrowHandler) Get(w http.ResponseWriter, r *http.Request) {
	escrowID, err := uuidParam(r, "escrowID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	escrow, err := h.service.Get(r.Context(), escrowID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, escrow)
}

// Release handles the escrow release request.
// POST /escrows/{escrowID}/release
func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Release)
}

// Refund handles the escrow refund request.
// POST /escrows/{escrowID}/refund
func (h *EscrowHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Refund)
}

func (h *EscrowHandler) resolve(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, escrowID, employerID uuid.UUID) (*domain.Escrow, error)) {
	escrowID, err := uuidParam(r, "escrowID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req ResolveEscrowRequest
	if !h.decode(w, r, &req) {
		return
	}

	escrow, err := op(r.Context(), escrowID, mustUUID(req.EmployerID))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, escrow)
}

// ListByJob handles the request for all escrows of a job.
// GET /jobs/{jobID}/escrows
func (h *EscrowHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuidParam(r, "jobID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	escrows, err := h.service.ListByJob(r.Context(), jobID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": escrows})
}
