package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	luckdomain "github.com/sortelabs/promo/internal/luck/domain"
)

const noOpportunityMessage = "Você não possui chances disponíveis no momento."

// TryMyLuck runs one draw attempt for the authenticated client. Having
// no available opportunity is reported as a 404 draw payload rather
// than a plain error so web clients can render it like a loss.
func (s *Server) TryMyLuck(c *gin.Context) {
	result, err := s.luckSvc.TryMyLuck(c.Request.Context(), clientToken(c))
	if err != nil {
		if errors.Is(err, luckdomain.ErrNoOpportunity) {
			c.JSON(http.StatusNotFound, gin.H{"data": luckdomain.DrawResult{
				Win:     false,
				Message: noOpportunityMessage,
			}})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
