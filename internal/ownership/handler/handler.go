// Package handler exposes the token ownership endpoints: lookups, transfers
// and handle updates.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/ownership/ports"
	"mintgate/internal/platform/middleware"
	"mintgate/internal/transport/http/shared"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

type Handler struct {
	registry ports.Registry
	logger   *slog.Logger
}

func New(registry ports.Registry, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

// Register mounts the authenticated token routes. Lookups go on RegisterReads.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tokens/{id}/transfer", h.handleTransfer)
	r.Put("/tokens/{id}/handle", h.handleSetHandle)
}

// RegisterReads mounts the unauthenticated lookup routes.
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/tokens/{id}", h.handleGetToken)
	r.Get("/participants/{address}/balance", h.handleGetBalance)
}

type tokenResponse struct {
	TokenID domain.TokenID `json:"token_id"`
	Owner   domain.Address `json:"owner"`
	Handle  string         `json:"handle"`
}

type balanceResponse struct {
	Address domain.Address `json:"address"`
	Balance uint64         `json:"balance"`
}

type transferRequest struct {
	To domain.Address `json:"to"`
}

type setHandleRequest struct {
	Handle string `json:"handle"`
}

func (h *Handler) handleGetToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	owner, err := h.registry.OwnerOf(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	handle, err := h.registry.Handle(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tokenResponse{TokenID: id, Owner: owner, Handle: handle})
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	balance, err := h.registry.BalanceOf(ctx, address)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, balanceResponse{Address: address, Balance: balance})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	id, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	to, err := domain.ParseAddress(string(req.To))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.registry.Transfer(ctx, id, caller, to); err != nil {
		h.logger.WarnContext(ctx, "transfer rejected",
			"request_id", middleware.GetRequestID(ctx),
			"token_id", id,
			"caller", caller,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetHandle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	id, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req setHandleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.registry.SetHandle(ctx, id, caller, req.Handle); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func tokenIDParam(r *http.Request) (domain.TokenID, error) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid token id")
	}
	return domain.TokenID(n), nil
}
