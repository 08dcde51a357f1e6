package api

import (
	"database/sql"
	"net/http"

	"github.com/cardhaus/cardhaus/internal/imaging"
	"github.com/cardhaus/cardhaus/internal/model"
	"github.com/cardhaus/cardhaus/internal/store"
)

// ProductsHandler handles product endpoints.
type ProductsHandler struct {
	DB *sql.DB
}

// MaxImageUpload limits product image uploads to 10 MiB.
const MaxImageUpload = 10 << 20

type createProductRequest struct {
	SKU         string             `json:"sku"`
	Name        string             `json:"name"`
	ProductType string             `json:"product_type"`
	UnitSize    float64            `json:"unit_size"`
	CardDetails *model.CardDetails `json:"card_details"`
}

type updateProductRequest struct {
	Name        *string            `json:"name"`
	UnitSize    *float64           `json:"unit_size"`
	CardDetails *model.CardDetails `json:"card_details"`
}

// List handles GET /api/products.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProducts(r.Context(), h.DB, r.URL.Query().Get("type"))
	if err != nil {
		storeError(w, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	jsonResponse(w, http.StatusOK, products)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := store.CreateProduct(r.Context(), h.DB, store.CreateProductParams{
		SKU:         req.SKU,
		Name:        req.Name,
		ProductType: req.ProductType,
		UnitSize:    req.UnitSize,
		CardDetails: req.CardDetails,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, p)
}

// Get handles GET /api/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := store.GetProduct(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Update handles PUT /api/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := store.UpdateProduct(r.Context(), h.DB, r.PathValue("id"), store.UpdateProductParams{
		Name:        req.Name,
		UnitSize:    req.UnitSize,
		CardDetails: req.CardDetails,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteProduct(r.Context(), h.DB, r.PathValue("id")); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// UploadImage handles PUT /api/products/{id}/image.
func (h *ProductsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	img, err := imaging.Normalize(http.MaxBytesReader(w, r.Body, MaxImageUpload))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetProductImage(r.Context(), h.DB, r.PathValue("id"), img.Data, img.MIME); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/products/{id}/image.
func (h *ProductsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetProductImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
