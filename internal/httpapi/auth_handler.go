package httpapi

import (
	"net/http"

	"litverse-be/internal/auth"
	"litverse-be/internal/user"

	"github.com/gin-gonic/gin"
)

func (h *Handler) setAuthCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, auth.TokenCookie(token, h.tokens.TTL(), h.secureCookie))
}

func (h *Handler) clearAuthCookie(c *gin.Context) {
	http.SetCookie(c.Writer, auth.ExpiredCookie(h.secureCookie))
}

func (h *Handler) signup(c *gin.Context) {
	var in user.SignupInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.users.Signup(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookie(c, res.Token)
	respond(c, http.StatusCreated, res)
}

func (h *Handler) login(c *gin.Context) {
	var in user.LoginInput
	if err := decode(c, &in); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.users.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookie(c, res.Token)
	respond(c, http.StatusOK, res)
}

func (h *Handler) logout(c *gin.Context) {
	h.clearAuthCookie(c)
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: "logged out"})
}
