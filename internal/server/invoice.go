package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sortelabs/promo/internal/export"
	invoicedomain "github.com/sortelabs/promo/internal/invoice/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
)

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// AddInvoice registers a fiscal coupon for the authenticated client
// and allocates its game chances and draw numbers in one shot.
func (s *Server) AddInvoice(c *gin.Context) {
	var req invoicedomain.AddInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ClientID = clientToken(c)

	resp, err := s.invoiceSvc.AddFromFiscalCode(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
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

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.invoiceSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

var invoiceExportColumns = []export.Column{
	{Key: "id", Header: "ID", Width: 10},
	{Key: "fiscal_code", Header: "Código Fiscal", Width: 30},
	{Key: "client_name", Header: "Cliente", Width: 30},
	{Key: "invoice_value", Header: "Valor da Nota", Width: 20},
	{Key: "has_item", Header: "Produto Participante", Width: 20},
	{Key: "has_creditcard", Header: "Cartão Parceiro", Width: 20},
	{Key: "has_partner_code", Header: "Código Parceiro", Width: 20},
	{Key: "store", Header: "Loja", Width: 15},
	{Key: "pdv", Header: "PDV", Width: 15},
	{Key: "created_at", Header: "Criado Em", Width: 25},
	{Key: "updated_at", Header: "Atualizado Em", Width: 25},
}

func (s *Server) ExportInvoices(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		AbortWithError(c, newValidationError("format", "invalid_format", "invalid format"))
		return
	}

	var rows []export.Row
	pageToken := ""
	for page := 0; page < maxExportPages; page++ {
		resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
			Pagination: pagination.Pagination{PageToken: pageToken, PageSize: exportPageSize},
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		for _, item := range resp.Invoices {
			rows = append(rows, export.Row{
				"id":               item.ID.String(),
				"fiscal_code":      item.FiscalCode,
				"client_name":      item.ClientName,
				"invoice_value":    item.InvoiceValue,
				"has_item":         item.HasItem,
				"has_creditcard":   item.HasCreditcard,
				"has_partner_code": item.HasPartnerCode,
				"store":            item.Store,
				"pdv":              item.PDV,
				"created_at":       item.CreatedAt,
				"updated_at":       item.UpdatedAt,
			})
		}
		if !resp.HasMore {
			break
		}
		pageToken = resp.NextPageToken
	}

	result, err := export.Generate(format, "invoices", invoiceExportColumns, rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeExport(c, result)
}
