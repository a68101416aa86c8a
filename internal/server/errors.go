package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	authdomain "github.com/sortelabs/promo/internal/auth/domain"
	"github.com/sortelabs/promo/internal/authorization"
	clientdomain "github.com/sortelabs/promo/internal/client/domain"
	drawnumberdomain "github.com/sortelabs/promo/internal/drawnumber/domain"
	gameopportunitydomain "github.com/sortelabs/promo/internal/gameopportunity/domain"
	invoicedomain "github.com/sortelabs/promo/internal/invoice/domain"
	luckdomain "github.com/sortelabs/promo/internal/luck/domain"
	pagecontentdomain "github.com/sortelabs/promo/internal/pagecontent/domain"
	productdomain "github.com/sortelabs/promo/internal/product/domain"
	userdomain "github.com/sortelabs/promo/internal/user/domain"
	voucherdomain "github.com/sortelabs/promo/internal/voucher/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authdomain.ErrDifferentDevice):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrDuplicateUser),
		errors.Is(err, userdomain.ErrDuplicateUser),
		errors.Is(err, clientdomain.ErrDuplicateCPF),
		errors.Is(err, invoicedomain.ErrDuplicateFiscalCode),
		errors.Is(err, drawnumberdomain.ErrDuplicateNumber),
		errors.Is(err, pagecontentdomain.ErrDuplicateSlug),
		errors.Is(err, productdomain.ErrDuplicateEAN):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, authdomain.ErrIncompleteData):
		return http.StatusPreconditionFailed, errorPayload{
			Type:    "incomplete_data",
			Message: "incomplete registration data",
		}
	case errors.Is(err, authdomain.ErrRateLimited),
		errors.Is(err, luckdomain.ErrClaimInFlight):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, invoicedomain.ErrSalesUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isAuthValidationError(err),
		isClientValidationError(err),
		isUserValidationError(err),
		isInvoiceValidationError(err),
		isGameOpportunityValidationError(err),
		isDrawNumberValidationError(err),
		isProductValidationError(err),
		isPageContentValidationError(err),
		isVoucherValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrClientNotFound),
		errors.Is(err, authdomain.ErrRoleNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrRoleNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrClientNotFound),
		errors.Is(err, gameopportunitydomain.ErrNotFound),
		errors.Is(err, drawnumberdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, pagecontentdomain.ErrNotFound),
		errors.Is(err, voucherdomain.ErrNotFound),
		errors.Is(err, luckdomain.ErrClientNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isAuthValidationError(err error) bool {
	switch err {
	case authdomain.ErrInvalidCPF,
		authdomain.ErrSecurityEmailSent,
		authdomain.ErrInvalidBundle,
		authdomain.ErrExpiredBundle:
		return true
	default:
		return false
	}
}

func isClientValidationError(err error) bool {
	switch err {
	case clientdomain.ErrInvalidCPF,
		clientdomain.ErrInvalidID,
		clientdomain.ErrInvalidBirthday,
		clientdomain.ErrUnderage:
		return true
	default:
		return false
	}
}

func isUserValidationError(err error) bool {
	switch err {
	case userdomain.ErrInvalidUsername,
		userdomain.ErrInvalidEmail,
		userdomain.ErrInvalidPassword,
		userdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrInvalidID,
		invoicedomain.ErrInvalidFiscalCode,
		invoicedomain.ErrBelowMinimumValue,
		invoicedomain.ErrDrawNumberExhausted:
		return true
	default:
		return false
	}
}

func isGameOpportunityValidationError(err error) bool {
	switch err {
	case gameopportunitydomain.ErrInvalidID,
		gameopportunitydomain.ErrInvalidUsedAt:
		return true
	default:
		return false
	}
}

func isDrawNumberValidationError(err error) bool {
	switch err {
	case drawnumberdomain.ErrInvalidID,
		drawnumberdomain.ErrInvalidNumber,
		drawnumberdomain.ErrInvalidTimestamp:
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidEAN,
		productdomain.ErrInvalidID,
		productdomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}

func isPageContentValidationError(err error) bool {
	switch err {
	case pagecontentdomain.ErrInvalidTitle,
		pagecontentdomain.ErrInvalidID,
		pagecontentdomain.ErrInvalidSlug:
		return true
	default:
		return false
	}
}

func isVoucherValidationError(err error) bool {
	switch err {
	case voucherdomain.ErrInvalidCoupom,
		voucherdomain.ErrInvalidDrawDate,
		voucherdomain.ErrInvalidValue,
		voucherdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch err {
	case auditdomain.ErrInvalidPageToken,
		auditdomain.ErrInvalidTimeRange,
		auditdomain.ErrInvalidAction:
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
