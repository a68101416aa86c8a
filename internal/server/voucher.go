package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sortelabs/promo/internal/export"
	voucherdomain "github.com/sortelabs/promo/internal/voucher/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
)

func (s *Server) CreateVoucher(c *gin.Context) {
	var req voucherdomain.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.voucherSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListVouchers(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
		Coupom    string `form:"coupom"`
		Claimed   string `form:"claimed"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	claimed, err := parseOptionalBool(query.Claimed)
	if err != nil {
		AbortWithError(c, newValidationError("claimed", "invalid_claimed", "invalid claimed"))
		return
	}

	resp, err := s.voucherSvc.List(c.Request.Context(), voucherdomain.ListVoucherRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Coupom:  strings.TrimSpace(query.Coupom),
		Claimed: claimed,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVoucherByID(c *gin.Context) {
	resp, err := s.voucherSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateVoucher(c *gin.Context) {
	var req voucherdomain.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.voucherSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteVoucher(c *gin.Context) {
	if err := s.voucherSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListDrawnVouchers is the public winners board: claimed vouchers with
// the winner's name and masked CPF.
func (s *Server) ListDrawnVouchers(c *gin.Context) {
	resp, err := s.voucherSvc.ListDrawn(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

var voucherExportColumns = []export.Column{
	{Key: "id", Header: "ID", Width: 10},
	{Key: "coupom", Header: "Cupom", Width: 25},
	{Key: "draw_date", Header: "Data do Sorteio", Width: 25},
	{Key: "voucher_value", Header: "Valor do Voucher", Width: 20},
	{Key: "created_at", Header: "Criado Em", Width: 25},
	{Key: "updated_at", Header: "Atualizado Em", Width: 25},
}

func (s *Server) ExportVouchers(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		AbortWithError(c, newValidationError("format", "invalid_format", "invalid format"))
		return
	}

	var rows []export.Row
	pageToken := ""
	for page := 0; page < maxExportPages; page++ {
		resp, err := s.voucherSvc.List(c.Request.Context(), voucherdomain.ListVoucherRequest{
			Pagination: pagination.Pagination{PageToken: pageToken, PageSize: exportPageSize},
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		for _, item := range resp.Vouchers {
			rows = append(rows, export.Row{
				"id":            item.ID.String(),
				"coupom":        item.Coupom,
				"draw_date":     item.DrawDate,
				"voucher_value": item.VoucherValue,
				"created_at":    item.CreatedAt,
				"updated_at":    item.UpdatedAt,
			})
		}
		if !resp.HasMore {
			break
		}
		pageToken = resp.NextPageToken
	}

	result, err := export.Generate(format, "vouchers", voucherExportColumns, rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeExport(c, result)
}
