// Package handler exposes the participant registry over HTTP. Mutations are
// owner operations and live on the admin router; lookups are public.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/identity/models"
	"mintgate/internal/platform/middleware"
	"mintgate/internal/transport/http/shared"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Service defines the registry operations the handler needs.
type Service interface {
	Register(ctx context.Context, caller, address domain.Address, role domain.Role, globalLimit uint64) (*models.Participant, error)
	VerifyPremium(ctx context.Context, caller, address domain.Address) (*models.Participant, error)
	UpdateGlobalLimit(ctx context.Context, caller, address domain.Address, newLimit uint64) (*models.Participant, error)
	Get(ctx context.Context, address domain.Address) (*models.Participant, error)
}

type Handler struct {
	identity Service
	owner    domain.Address
	logger   *slog.Logger
}

// New creates the participant handler. Admin routes act on behalf of owner.
func New(identity Service, owner domain.Address, logger *slog.Logger) *Handler {
	return &Handler{identity: identity, owner: owner, logger: logger}
}

// RegisterAdmin mounts the owner operations. The parent router must enforce
// the admin token.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/participants", h.handleRegister)
	r.Post("/participants/{address}/verify", h.handleVerify)
	r.Put("/participants/{address}/limit", h.handleUpdateLimit)
}

// RegisterReads mounts the public lookup routes.
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/participants/{address}", h.handleGet)
}

type registerRequest struct {
	Address     domain.Address `json:"address"`
	Role        string         `json:"role"`
	GlobalLimit uint64         `json:"global_limit"`
}

type updateLimitRequest struct {
	GlobalLimit uint64 `json:"global_limit"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	participant, err := h.identity.Register(ctx, h.owner, req.Address, role, req.GlobalLimit)
	if err != nil {
		h.logWarn(ctx, "registration rejected", req.Address, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, participant)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	participant, err := h.identity.VerifyPremium(ctx, h.owner, address)
	if err != nil {
		h.logWarn(ctx, "verification rejected", address, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, participant)
}

func (h *Handler) handleUpdateLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req updateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	participant, err := h.identity.UpdateGlobalLimit(ctx, h.owner, address, req.GlobalLimit)
	if err != nil {
		h.logWarn(ctx, "limit update rejected", address, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, participant)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	participant, err := h.identity.Get(ctx, address)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, participant)
}

func (h *Handler) logWarn(ctx context.Context, msg string, address domain.Address, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"address", address,
		"error", err.Error(),
	)
}
