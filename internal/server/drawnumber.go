package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	drawnumberdomain "github.com/sortelabs/promo/internal/drawnumber/domain"
	"github.com/sortelabs/promo/internal/export"
	"github.com/sortelabs/promo/pkg/db/pagination"
)

func (s *Server) CreateDrawNumber(c *gin.Context) {
	var req drawnumberdomain.CreateDrawNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.drawNumberSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListDrawNumbers(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.drawNumberSvc.List(c.Request.Context(), drawnumberdomain.ListDrawNumberRequest{
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

func (s *Server) GetDrawNumberByID(c *gin.Context) {
	resp, err := s.drawNumberSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDrawNumber(c *gin.Context) {
	var req drawnumberdomain.UpdateDrawNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.drawNumberSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDrawNumber(c *gin.Context) {
	if err := s.drawNumberSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

var drawNumberExportColumns = []export.Column{
	{Key: "id", Header: "ID", Width: 10},
	{Key: "number", Header: "Número da Sorte", Width: 20},
	{Key: "fiscal_code", Header: "Código Fiscal", Width: 30},
	{Key: "client_name", Header: "Cliente", Width: 30},
	{Key: "active", Header: "Ativo", Width: 15},
	{Key: "winner_at", Header: "Sorteado Em", Width: 25},
	{Key: "email_sent_at", Header: "Email Enviado Em", Width: 25},
	{Key: "created_at", Header: "Criado Em", Width: 25},
	{Key: "updated_at", Header: "Atualizado Em", Width: 25},
}

func (s *Server) ExportDrawNumbers(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		AbortWithError(c, newValidationError("format", "invalid_format", "invalid format"))
		return
	}

	var rows []export.Row
	pageToken := ""
	for page := 0; page < maxExportPages; page++ {
		resp, err := s.drawNumberSvc.List(c.Request.Context(), drawnumberdomain.ListDrawNumberRequest{
			Pagination: pagination.Pagination{PageToken: pageToken, PageSize: exportPageSize},
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		for _, item := range resp.DrawNumbers {
			rows = append(rows, export.Row{
				"id":            item.ID.String(),
				"number":        item.Number,
				"fiscal_code":   item.FiscalCode,
				"client_name":   item.ClientName,
				"active":        item.Active,
				"winner_at":     item.WinnerAt,
				"email_sent_at": item.EmailSentAt,
				"created_at":    item.CreatedAt,
				"updated_at":    item.UpdatedAt,
			})
		}
		if !resp.HasMore {
			break
		}
		pageToken = resp.NextPageToken
	}

	result, err := export.Generate(format, "draw_numbers", drawNumberExportColumns, rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeExport(c, result)
}
