package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gameopportunitydomain "github.com/sortelabs/promo/internal/gameopportunity/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
)

func (s *Server) CreateGameOpportunity(c *gin.Context) {
	var req gameopportunitydomain.CreateGameOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.gameOpportunitySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListGameOpportunities(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.gameOpportunitySvc.List(c.Request.Context(), gameopportunitydomain.ListGameOpportunityRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetGameOpportunityByID(c *gin.Context) {
	resp, err := s.gameOpportunitySvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateGameOpportunity(c *gin.Context) {
	var req gameopportunitydomain.UpdateGameOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.gameOpportunitySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteGameOpportunity(c *gin.Context) {
	if err := s.gameOpportunitySvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
