package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finsite-server/internal/auth"
	"finsite-server/internal/service"
)

const serverErrorMessage = "Server error"

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	// a missing or malformed body falls through to the required-fields check
	_ = c.ShouldBindJSON(&req)

	user, sess, err := h.auth.Register(c.Request.Context(), req.FullName, req.Email, req.Password, req.Remember)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Full name, email and password are required."})
		return
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already registered."})
		return
	case err != nil:
		h.logger.Errorf("register error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": serverErrorMessage})
		return
	}

	http.SetCookie(c.Writer, auth.SessionCookie(sess.Token, sess.TTL))
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": user.ID})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)

	user, sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.Remember)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	case err != nil:
		h.logger.Errorf("login error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": serverErrorMessage})
		return
	}

	http.SetCookie(c.Writer, auth.SessionCookie(sess.Token, sess.TTL))
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": user.ID, "name": user.FullName})
}

func (h *Handler) logout(c *gin.Context) {
	http.SetCookie(c.Writer, auth.ClearSessionCookie())
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
