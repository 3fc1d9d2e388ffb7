package httpapi

import (
	"net/http"

	"litverse-be/internal/order"

	"github.com/gin-gonic/gin"
)

func (h *Handler) placeOrder(c *gin.Context) {
	o, err := h.orders.PlaceOrder(c.Request.Context(), caller(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, o)
}

func (h *Handler) placeDirectOrder(c *gin.Context) {
	var in order.DirectOrderInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	o, err := h.orders.PlaceDirectOrder(c.Request.Context(), caller(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, o)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

func (h *Handler) listUserOrders(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		respondError(c, err)
		return
	}
	if !caller(c).CanAccess(userID) {
		respondError(c, errForbidden)
		return
	}

	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	// hide other users' orders behind 404
	if !caller(c).CanAccess(o.UserID) {
		respondError(c, order.ErrOrderNotFound)
		return
	}
	respond(c, http.StatusOK, o)
}

// updateOrderStatus reads the new status from ?status=, falling back to a
// {"status": ...} body.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	status := order.Status(c.Query("status"))
	if status == "" && c.Request.ContentLength != 0 {
		var in order.StatusInput
		if err := decode(c, &in); err != nil {
			respondError(c, err)
			return
		}
		if in.Status != nil {
			status = *in.Status
		}
	}
	if status == "" {
		respondError(c, invalidParam("status", "is required"))
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteAllOrders(c *gin.Context) {
	if err := h.orders.DeleteAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
