package httpapi

import (
	"net/http"

	"litverse-be/internal/user"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	u, err := h.users.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var in user.UpdateInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	u, err := h.users.Update(c.Request.Context(), caller(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	cl := caller(c)
	if err := h.users.Delete(c.Request.Context(), cl, id); err != nil {
		respondError(c, err)
		return
	}
	if cl.ID == id {
		h.clearAuthCookie(c)
	}
	c.Status(http.StatusNoContent)
}
