package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/medaimane/AthleticEdge/internal/entity"
)

type cartResponse struct {
	Owner     string            `json:"owner"`
	Items     []entity.LineItem `json:"items"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	ItemCount int               `json:"item_count"`
}

func newCartResponse(c entity.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []entity.LineItem{}
	}
	return cartResponse{Owner: c.Owner, Items: items, Subtotal: c.Subtotal(), ItemCount: c.ItemCount()}
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (req cartItemRequest) key() entity.LineKey {
	return entity.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Get(r.Context(), r.PathValue("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.carts.AddItem(r.Context(), r.PathValue("owner"), req.ProductID, req.Quantity, req.Size, req.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCartResponse(cart))
}

func (h *Handler) handleSetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.carts.SetQuantity(r.Context(), r.PathValue("owner"), req.key(), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := cartItemRequest{ProductID: q.Get("product_id"), Size: q.Get("size"), Color: q.Get("color")}
	if req.ProductID == "" {
		writeError(w, r, &entity.ValidationError{
			Message: "product_id is required",
			Fields:  map[string]string{"product_id": "is required"},
		})
		return
	}
	cart, err := h.carts.RemoveItem(r.Context(), r.PathValue("owner"), req.key())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), r.PathValue("owner")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
