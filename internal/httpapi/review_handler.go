package httpapi

import (
	"net/http"
	"strconv"

	"litverse-be/internal/review"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listReviews(c *gin.Context) {
	var f review.ListFilter
	if raw := c.Query("book_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, invalidParam("book_id", "must be a positive integer"))
			return
		}
		f.BookID = id
	}

	reviews, err := h.reviews.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, reviews)
}

func (h *Handler) getReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	rv, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, rv)
}

func (h *Handler) createReview(c *gin.Context) {
	var in review.CreateInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	rv, err := h.reviews.Create(c.Request.Context(), caller(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, rv)
}

func (h *Handler) updateReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var in review.UpdateInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	rv, err := h.reviews.Update(c.Request.Context(), caller(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, rv)
}

func (h *Handler) deleteReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
