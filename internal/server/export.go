package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sortelabs/promo/internal/export"
)

const (
	exportPageSize = 250
	// Hard stop for export pagination. 250 rows a page puts the ceiling
	// well above any realistic campaign size.
	maxExportPages = 400
)

func writeExport(c *gin.Context, result export.Result) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
