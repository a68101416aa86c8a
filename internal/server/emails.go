package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type emailQuery struct {
	Email  string `form:"email"`
	Name   string `form:"name"`
	Coupom string `form:"coupom"`
}

func (q emailQuery) validate(needCoupom bool) error {
	if strings.TrimSpace(q.Email) == "" {
		return newValidationError("email", "invalid_email", "invalid email")
	}
	if needCoupom && strings.TrimSpace(q.Coupom) == "" {
		return newValidationError("coupom", "invalid_coupom", "invalid coupom")
	}
	return nil
}

// The /emails endpoints let operators re-send a transactional email by
// hand, mirroring what the flows send automatically.

func (s *Server) SendWelcomeEmail(c *gin.Context) {
	var query emailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if err := query.validate(false); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.emailProvider.SendWelcome(c.Request.Context(), strings.TrimSpace(query.Email), strings.TrimSpace(query.Name)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
}

func (s *Server) SendAdjustmentVoucherEmail(c *gin.Context) {
	var query emailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if err := query.validate(true); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.emailProvider.SendAdjustmentVoucher(c.Request.Context(), strings.TrimSpace(query.Email), strings.TrimSpace(query.Name), strings.TrimSpace(query.Coupom)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
}

func (s *Server) SendVoucherWinnerEmail(c *gin.Context) {
	var query emailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if err := query.validate(true); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.emailProvider.SendVoucherWinner(c.Request.Context(), strings.TrimSpace(query.Email), strings.TrimSpace(query.Name), strings.TrimSpace(query.Coupom)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
}

func (s *Server) SendDrawWinnerEmail(c *gin.Context) {
	var query emailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if err := query.validate(false); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.emailProvider.SendDrawWinner(c.Request.Context(), strings.TrimSpace(query.Email), strings.TrimSpace(query.Name)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
}
