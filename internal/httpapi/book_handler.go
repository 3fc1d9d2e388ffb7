package httpapi

import (
	"net/http"

	"litverse-be/internal/book"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listBooks(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.books.List(c.Request.Context(), book.ListFilter{
		Category: book.Category(c.Query("category")),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (h *Handler) getBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	b, err := h.books.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, b)
}

func (h *Handler) createBook(c *gin.Context) {
	var in book.CreateBookInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	b, err := h.books.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, b)
}

func (h *Handler) updateBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var in book.UpdateBookInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	b, err := h.books.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, b)
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.books.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteAllBooks(c *gin.Context) {
	if err := h.books.DeleteAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
