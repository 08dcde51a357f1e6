package api

import (
	"database/sql"
	"net/http"

	"github.com/cardhaus/cardhaus/internal/model"
	"github.com/cardhaus/cardhaus/internal/store"
)

// StoresHandler handles store endpoints.
type StoresHandler struct {
	DB *sql.DB
}

type createStoreRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	MaxCapacity float64 `json:"max_capacity"`
}

type updateStoreRequest struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	MaxCapacity *float64 `json:"max_capacity"`
}

// List handles GET /api/stores.
func (h *StoresHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := store.ListStores(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if stores == nil {
		stores = []model.Store{}
	}
	jsonResponse(w, http.StatusOK, stores)
}

// Create handles POST /api/stores.
func (h *StoresHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := store.CreateStore(r.Context(), h.DB, req.Name, req.Address, req.MaxCapacity)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, s)
}

// Get handles GET /api/stores/{id}.
func (h *StoresHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := store.GetStore(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s)
}

// Update handles PUT /api/stores/{id}.
func (h *StoresHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := store.UpdateStore(r.Context(), h.DB, r.PathValue("id"), store.UpdateStoreParams{
		Name:        req.Name,
		Address:     req.Address,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s)
}

// Delete handles DELETE /api/stores/{id}.
func (h *StoresHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteStore(r.Context(), h.DB, r.PathValue("id")); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "store deleted"})
}

// GetInventory handles GET /api/stores/{id}/inventory.
func (h *StoresHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	records, err := store.ListInventory(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	if records == nil {
		records = []model.InventoryRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// GetCapacity handles GET /api/stores/{id}/capacity, returning the live
// computed usage alongside the stored snapshot.
func (h *StoresHandler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	s, err := store.GetStore(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}

	computed, err := store.ComputeStoreCapacity(r.Context(), h.DB, s.ID)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]float64{
		"max_capacity":     s.MaxCapacity,
		"current_capacity": s.CurrentCapacity,
		"computed":         computed,
	})
}
