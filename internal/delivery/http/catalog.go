package http

import (
	"context"
	"net/http"

	"github.com/medaimane/AthleticEdge/internal/entity"
)

func (h *Handler) writeProducts(w http.ResponseWriter, r *http.Request, query func(context.Context) ([]entity.Product, error)) {
	products, err := query(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	h.writeProducts(w, r, h.catalog.All)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleGetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	h.writeProducts(w, r, func(ctx context.Context) ([]entity.Product, error) {
		return h.catalog.ByCategory(ctx, r.PathValue("category"))
	})
}

func (h *Handler) handleGetProductsByBrand(w http.ResponseWriter, r *http.Request) {
	h.writeProducts(w, r, func(ctx context.Context) ([]entity.Product, error) {
		return h.catalog.ByBrand(ctx, r.PathValue("brand"))
	})
}

func (h *Handler) handleGetFeatured(w http.ResponseWriter, r *http.Request) {
	h.writeProducts(w, r, h.catalog.Featured)
}

func (h *Handler) handleGetBestSellers(w http.ResponseWriter, r *http.Request) {
	h.writeProducts(w, r, h.catalog.BestSellers)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	h.writeProducts(w, r, func(ctx context.Context) ([]entity.Product, error) {
		return h.catalog.Search(ctx, r.URL.Query().Get("q"))
	})
}
