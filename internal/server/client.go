package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	clientdomain "github.com/sortelabs/promo/internal/client/domain"
	"github.com/sortelabs/promo/internal/export"
	"github.com/sortelabs/promo/pkg/db/pagination"
)

type listClientsQuery struct {
	PageToken   string `form:"page_token"`
	PageSize    int    `form:"page_size"`
	Name        string `form:"name"`
	CPF         string `form:"cpf"`
	Cel         string `form:"cel"`
	Email       string `form:"email"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

func (q listClientsQuery) toRequest() (clientdomain.ListClientRequest, error) {
	createdFrom, err := parseOptionalTime(q.CreatedFrom, false)
	if err != nil {
		return clientdomain.ListClientRequest{}, newValidationError("created_from", "invalid_created_from", "invalid created_from")
	}
	createdTo, err := parseOptionalTime(q.CreatedTo, true)
	if err != nil {
		return clientdomain.ListClientRequest{}, newValidationError("created_to", "invalid_created_to", "invalid created_to")
	}

	return clientdomain.ListClientRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(q.PageToken),
			PageSize:  q.PageSize,
		},
		Name:        strings.TrimSpace(q.Name),
		CPF:         strings.TrimSpace(q.CPF),
		Cel:         strings.TrimSpace(q.Cel),
		Email:       strings.TrimSpace(q.Email),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}, nil
}

func (s *Server) CreateClient(c *gin.Context) {
	var req clientdomain.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListClients(c *gin.Context) {
	var query listClientsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req, err := query.toRequest()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.clientSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClientByID(c *gin.Context) {
	resp, err := s.clientSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateClient(c *gin.Context) {
	var req clientdomain.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.clientSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteClient(c *gin.Context) {
	if err := s.clientSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

var clientExportColumns = []export.Column{
	{Key: "id", Header: "ID", Width: 10},
	{Key: "name", Header: "Nome", Width: 30},
	{Key: "cpf", Header: "CPF", Width: 20},
	{Key: "birthday", Header: "Data de Aniversário", Width: 20},
	{Key: "cel", Header: "Celular", Width: 20},
	{Key: "email", Header: "Email", Width: 30},
	{Key: "is_pre_register", Header: "Pré-Cadastro", Width: 15},
	{Key: "is_mega_winner", Header: "Mega Ganhador", Width: 15},
	{Key: "welcome_email_sent_at", Header: "Email Enviado Em", Width: 25},
	{Key: "created_at", Header: "Criado Em", Width: 25},
	{Key: "updated_at", Header: "Atualizado Em", Width: 25},
}

func (s *Server) ExportClients(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		AbortWithError(c, newValidationError("format", "invalid_format", "invalid format"))
		return
	}

	var rows []export.Row
	pageToken := ""
	for page := 0; page < maxExportPages; page++ {
		resp, err := s.clientSvc.List(c.Request.Context(), clientdomain.ListClientRequest{
			Pagination: pagination.Pagination{PageToken: pageToken, PageSize: exportPageSize},
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		for _, item := range resp.Clients {
			rows = append(rows, export.Row{
				"id":                    item.ID.String(),
				"name":                  item.Name,
				"cpf":                   item.CPF,
				"birthday":              item.Birthday,
				"cel":                   item.Cel,
				"email":                 item.Email,
				"is_pre_register":       item.IsPreRegister,
				"is_mega_winner":        item.IsMegaWinner,
				"welcome_email_sent_at": item.WelcomeEmailSentAt,
				"created_at":            item.CreatedAt,
				"updated_at":            item.UpdatedAt,
			})
		}
		if !resp.HasMore {
			break
		}
		pageToken = resp.NextPageToken
	}

	result, err := export.Generate(format, "clients", clientExportColumns, rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeExport(c, result)
}

func (s *Server) GetWebProfile(c *gin.Context) {
	resp, err := s.clientSvc.GetWebProfile(c.Request.Context(), clientToken(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWebSummary(c *gin.Context) {
	resp, err := s.clientSvc.GetWebSummary(c.Request.Context(), clientToken(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateWebProfile(c *gin.Context) {
	var req clientdomain.UpdateWebRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.UpdateWeb(c.Request.Context(), clientToken(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
