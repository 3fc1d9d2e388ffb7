package httpapi

import (
	"net/http"

	"litverse-be/internal/cart"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getCart(c *gin.Context) {
	ct, err := h.carts.Get(c.Request.Context(), caller(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, ct)
}

func (h *Handler) addToCart(c *gin.Context) {
	var in cart.AddItemInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}
	if err := h.validate.ValidateFull(in); err != nil {
		respondError(c, err)
		return
	}

	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}

	ct, err := h.carts.AddItem(c.Request.Context(), caller(c).ID, in.BookID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, ct)
}

func (h *Handler) setCartQuantity(c *gin.Context) {
	var in cart.SetQuantityInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}
	if err := h.validate.ValidateFull(in); err != nil {
		respondError(c, err)
		return
	}

	ct, err := h.carts.SetQuantity(c.Request.Context(), caller(c).ID, in.BookID, *in.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, ct)
}

func (h *Handler) removeFromCart(c *gin.Context) {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		respondError(c, err)
		return
	}

	ct, err := h.carts.RemoveItem(c.Request.Context(), caller(c).ID, bookID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, ct)
}
