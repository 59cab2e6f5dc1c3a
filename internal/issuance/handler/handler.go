// Package handler exposes the minting endpoints. Callers authenticate with a
// bearer token; the subject claim is the participant address.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/platform/middleware"
	"mintgate/internal/transport/http/shared"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Service defines the issuance operations the handler needs.
type Service interface {
	Mint(ctx context.Context, caller domain.Address, id domain.TokenID, handle string) error
	MintBatch(ctx context.Context, caller domain.Address, ids []domain.TokenID, handles []string) error
	MintPlatformBatch(ctx context.Context, caller domain.Address, ids []domain.TokenID, handles []string) error
}

type Handler struct {
	issuance Service
	logger   *slog.Logger
}

func New(issuance Service, logger *slog.Logger) *Handler {
	return &Handler{issuance: issuance, logger: logger}
}

// Register mounts the minting routes. The parent router must already enforce
// caller authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/mint", h.handleMint)
	r.Post("/mint/batch", h.handleMintBatch)
	r.Post("/mint/platform", h.handleMintPlatform)
}

type mintRequest struct {
	TokenID domain.TokenID `json:"token_id"`
	Handle  string         `json:"handle"`
}

type mintBatchRequest struct {
	TokenIDs []domain.TokenID `json:"token_ids"`
	Handles  []string         `json:"handles"`
}

type mintResponse struct {
	TokenIDs []domain.TokenID `json:"token_ids"`
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.issuance.Mint(ctx, caller, req.TokenID, req.Handle); err != nil {
		h.logWarn(ctx, "mint rejected", caller, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, mintResponse{TokenIDs: []domain.TokenID{req.TokenID}})
}

func (h *Handler) handleMintBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req mintBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.issuance.MintBatch(ctx, caller, req.TokenIDs, req.Handles); err != nil {
		h.logWarn(ctx, "batch mint rejected", caller, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, mintResponse{TokenIDs: req.TokenIDs})
}

func (h *Handler) handleMintPlatform(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req mintBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.issuance.MintPlatformBatch(ctx, caller, req.TokenIDs, req.Handles); err != nil {
		h.logWarn(ctx, "platform mint rejected", caller, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, mintResponse{TokenIDs: req.TokenIDs})
}

func (h *Handler) logWarn(ctx context.Context, msg string, caller domain.Address, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"caller", caller,
		"error", err.Error(),
	)
}
