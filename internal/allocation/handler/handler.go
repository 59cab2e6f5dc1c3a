// Package handler exposes the phase lifecycle over HTTP. All mutations are
// owner operations behind the admin router; phase state is publicly readable.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/allocation/models"
	"mintgate/internal/platform/middleware"
	"mintgate/internal/transport/http/shared"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Service defines the allocation operations the handler needs.
type Service interface {
	CreatePhase(ctx context.Context, caller domain.Address, reservedLimit, premiumLimit, normalLimit uint64) (*models.Phase, error)
	ActivatePhase(ctx context.Context, caller domain.Address) (*models.Phase, error)
	DeactivatePhase(ctx context.Context, caller domain.Address) (*models.Phase, error)
	IncreaseReservedLimit(ctx context.Context, caller domain.Address, newLimit uint64) (*models.Phase, error)
	AllowTransfer(ctx context.Context, caller domain.Address) error
	CurrentPhase(ctx context.Context) *models.Phase
	TransfersAllowed(ctx context.Context) bool
}

type Handler struct {
	allocation Service
	owner      domain.Address
	logger     *slog.Logger
}

func New(allocation Service, owner domain.Address, logger *slog.Logger) *Handler {
	return &Handler{allocation: allocation, owner: owner, logger: logger}
}

// RegisterAdmin mounts the phase lifecycle routes. The parent router must
// enforce the admin token.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/phases", h.handleCreate)
	r.Post("/phases/activate", h.handleActivate)
	r.Post("/phases/deactivate", h.handleDeactivate)
	r.Put("/phases/reserved-limit", h.handleIncreaseReservedLimit)
	r.Post("/transfers/allow", h.handleAllowTransfer)
}

// RegisterReads mounts the public phase state routes.
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/phases/current", h.handleCurrentPhase)
	r.Get("/transfers/status", h.handleTransfersStatus)
}

type createPhaseRequest struct {
	ReservedLimit uint64 `json:"reserved_limit"`
	PremiumLimit  uint64 `json:"premium_limit"`
	NormalLimit   uint64 `json:"normal_limit"`
}

type reservedLimitRequest struct {
	ReservedLimit uint64 `json:"reserved_limit"`
}

type transfersStatusResponse struct {
	Allowed bool `json:"allowed"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	phase, err := h.allocation.CreatePhase(ctx, h.owner, req.ReservedLimit, req.PremiumLimit, req.NormalLimit)
	if err != nil {
		h.logWarn(ctx, "phase creation rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, phase)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	phase, err := h.allocation.ActivatePhase(ctx, h.owner)
	if err != nil {
		h.logWarn(ctx, "phase activation rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	phase, err := h.allocation.DeactivatePhase(ctx, h.owner)
	if err != nil {
		h.logWarn(ctx, "phase deactivation rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
}

func (h *Handler) handleIncreaseReservedLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reservedLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	phase, err := h.allocation.IncreaseReservedLimit(ctx, h.owner, req.ReservedLimit)
	if err != nil {
		h.logWarn(ctx, "reserved limit raise rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
}

func (h *Handler) handleAllowTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.allocation.AllowTransfer(ctx, h.owner); err != nil {
		h.logWarn(ctx, "transfer enable rejected", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCurrentPhase(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.allocation.CurrentPhase(r.Context()))
}

func (h *Handler) handleTransfersStatus(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, transfersStatusResponse{
		Allowed: h.allocation.TransfersAllowed(r.Context()),
	})
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
