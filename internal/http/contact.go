package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finsite-server/internal/mailer"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Msg     string `json:"msg"`
	ToEmail string `json:"toEmail"`
}

func (h *Handler) sendContactForm(c *gin.Context) {
	var req contactRequest
	_ = c.ShouldBindJSON(&req)

	if req.Name == "" || req.Email == "" || req.Msg == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Name, email, and message are required.",
		})
		return
	}

	err := h.mail.SendEnquiry(c.Request.Context(), mailer.Enquiry{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Msg,
		Recipient: req.ToEmail,
	})
	if err != nil {
		h.logger.Errorf("contact form email error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to send message. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Your message has been sent successfully.",
	})
}
