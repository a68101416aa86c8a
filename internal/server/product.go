package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sortelabs/promo/internal/export"
	productdomain "github.com/sortelabs/promo/internal/product/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		PageToken   string `form:"page_token"`
		PageSize    int    `form:"page_size"`
		EAN         string `form:"ean"`
		Description string `form:"description"`
		Brand       string `form:"brand"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListProductRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		EAN:         strings.TrimSpace(query.EAN),
		Description: strings.TrimSpace(query.Description),
		Brand:       strings.TrimSpace(query.Brand),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

var productExportColumns = []export.Column{
	{Key: "id", Header: "ID", Width: 10},
	{Key: "ean", Header: "EAN", Width: 20},
	{Key: "description", Header: "Descrição", Width: 40},
	{Key: "brand", Header: "Marca", Width: 25},
	{Key: "created_at", Header: "Criado Em", Width: 25},
	{Key: "updated_at", Header: "Atualizado Em", Width: 25},
}

func (s *Server) ExportProducts(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		AbortWithError(c, newValidationError("format", "invalid_format", "invalid format"))
		return
	}

	var rows []export.Row
	pageToken := ""
	for page := 0; page < maxExportPages; page++ {
		resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListProductRequest{
			Pagination: pagination.Pagination{PageToken: pageToken, PageSize: exportPageSize},
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		for _, item := range resp.Products {
			rows = append(rows, export.Row{
				"id":          item.ID.String(),
				"ean":         item.EAN,
				"description": item.Description,
				"brand":       item.Brand,
				"created_at":  item.CreatedAt,
				"updated_at":  item.UpdatedAt,
			})
		}
		if !resp.HasMore {
			break
		}
		pageToken = resp.NextPageToken
	}

	result, err := export.Generate(format, "products", productExportColumns, rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeExport(c, result)
}
