package httpapi

import (
	"net/http"

	"litverse-be/internal/payment"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listPayments(c *gin.Context) {
	payments, err := h.payments.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, payments)
}

func (h *Handler) listUserPayments(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		respondError(c, err)
		return
	}

	payments, err := h.payments.ListByUser(c.Request.Context(), caller(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, payments)
}

func (h *Handler) createPayment(c *gin.Context) {
	var in payment.CreateInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	p, err := h.payments.Create(c.Request.Context(), caller(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, p)
}
