package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/cardhaus/cardhaus/internal/model"
	"github.com/cardhaus/cardhaus/internal/store"
)

// TransfersHandler handles transfer request endpoints.
type TransfersHandler struct {
	DB *sql.DB
}

type createTransferRequest struct {
	FromStoreID string                     `json:"from_store_id"`
	ToStoreID   string                     `json:"to_store_id"`
	Notes       string                     `json:"notes"`
	Items       []store.TransferItemParams `json:"items"`
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	CloseReason string `json:"close_reason"`
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := GetActor(r.Context())
	request, err := store.CreateTransferRequest(r.Context(), h.DB, actor, store.CreateTransferParams{
		FromStoreID: req.FromStoreID,
		ToStoreID:   req.ToStoreID,
		Notes:       req.Notes,
		Items:       req.Items,
	})
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("transfer request created",
		"number", request.RequestNumber,
		"user", actor.Username,
		"from", request.FromStoreName,
		"to", request.ToStoreName,
		"items", len(request.Items))
	jsonResponse(w, http.StatusCreated, request)
}

// List handles GET /api/transfers.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := store.ListTransferRequests(r.Context(), h.DB,
		r.URL.Query().Get("store_id"), r.URL.Query().Get("status"))
	if err != nil {
		storeError(w, err)
		return
	}
	if requests == nil {
		requests = []model.TransferRequest{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Get handles GET /api/transfers/{id}.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	request, err := store.GetTransferRequest(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, request)
}

// UpdateStatus handles PATCH /api/transfers/{id}/status.
func (h *TransfersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := GetActor(r.Context())
	request, err := store.UpdateTransferStatus(r.Context(), h.DB,
		r.PathValue("id"), req.Status, actor, req.CloseReason)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("transfer status changed",
		"number", request.RequestNumber,
		"status", request.Status,
		"user", actor.Username)
	jsonResponse(w, http.StatusOK, request)
}

// Delete handles DELETE /api/transfers/{id}.
func (h *TransfersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := GetActor(r.Context())
	if err := store.DeleteTransferRequest(r.Context(), h.DB, r.PathValue("id"), actor); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "transfer request deleted"})
}
