package api

import (
	"database/sql"
	"net/http"

	"github.com/cardhaus/cardhaus/internal/model"
	"github.com/cardhaus/cardhaus/internal/store"
)

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	DB *sql.DB
}

type createInventoryRequest struct {
	StoreID       string `json:"store_id"`
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	Location      string `json:"location"`
	MinStockLevel int    `json:"min_stock_level"`
	Notes         string `json:"notes"`
}

type createContainerRequest struct {
	StoreID           string                    `json:"store_id"`
	ContainerType     string                    `json:"container_type"`
	ContainerName     string                    `json:"container_name"`
	ContainerUnitSize float64                   `json:"container_unit_size"`
	Location          string                    `json:"location"`
	Items             []model.CardContainerItem `json:"items"`
	Notes             string                    `json:"notes"`
}

type updateInventoryRequest struct {
	Quantity      *int    `json:"quantity"`
	Location      *string `json:"location"`
	MinStockLevel *int    `json:"min_stock_level"`
	Notes         *string `json:"notes"`
}

type checkDuplicateRequest struct {
	StoreID   string `json:"store_id"`
	ProductID string `json:"product_id"`
	Location  string `json:"location"`
}

type createInventoryResponse struct {
	Record *model.InventoryRecord `json:"record"`
	Merged bool                   `json:"merged"`
}

// Create handles POST /api/inventory. An existing record at the same
// (store, product, location) is merged rather than duplicated.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, merged, err := store.CreateInventory(r.Context(), h.DB, store.CreateInventoryParams{
		StoreID:       req.StoreID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		Location:      req.Location,
		MinStockLevel: req.MinStockLevel,
		Notes:         req.Notes,
	})
	if err != nil {
		storeError(w, err)
		return
	}

	status := http.StatusCreated
	if merged {
		status = http.StatusOK
	}
	jsonResponse(w, status, createInventoryResponse{Record: record, Merged: merged})
}

// CreateContainer handles POST /api/inventory/containers.
func (h *InventoryHandler) CreateContainer(w http.ResponseWriter, r *http.Request) {
	var req createContainerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := store.CreateCardContainer(r.Context(), h.DB, store.CreateContainerParams{
		StoreID:           req.StoreID,
		ContainerType:     req.ContainerType,
		ContainerName:     req.ContainerName,
		ContainerUnitSize: req.ContainerUnitSize,
		Location:          req.Location,
		Items:             req.Items,
		Notes:             req.Notes,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, record)
}

// CheckDuplicate handles POST /api/inventory/check-duplicate, the pre-flight
// placement check used before creating inventory.
func (h *InventoryHandler) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req checkDuplicateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := store.CheckDuplicate(r.Context(), h.DB, req.StoreID, req.ProductID, req.Location)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := store.GetInventoryRecord(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

// Update handles PUT /api/inventory/{id}.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := store.UpdateInventory(r.Context(), h.DB, r.PathValue("id"), store.UpdateInventoryParams{
		Quantity:      req.Quantity,
		Location:      req.Location,
		MinStockLevel: req.MinStockLevel,
		Notes:         req.Notes,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

// Delete handles DELETE /api/inventory/{id}.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteInventory(r.Context(), h.DB, r.PathValue("id")); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "inventory record deleted"})
}
