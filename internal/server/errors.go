package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joseikin-rescue/server/internal/advisor"
	advisordomain "github.com/joseikin-rescue/server/internal/advisor/domain"
	billingdomain "github.com/joseikin-rescue/server/internal/billing/domain"
	"github.com/joseikin-rescue/server/internal/identity"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrPayloadTooLarge = errors.New("payload_too_large")
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

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, quotadomain.ErrQuotaExceeded):
		// Actionable: the user needs more credits, not a retry.
		return http.StatusPaymentRequired, errorPayload{
			Type:    "quota_exceeded",
			Message: "question allowance exhausted; purchase an upgrade or credit pack",
		}
	case errors.Is(err, quotadomain.ErrNoActiveSubscription):
		// Should not happen for any registered user; provisioning is broken.
		return http.StatusInternalServerError, errorPayload{
			Type:    "no_active_subscription",
			Message: "subscription state missing",
		}
	case errors.Is(err, billingdomain.ErrUnrecognizedProduct):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unrecognized_product",
			Message: "product code has no tier or pack mapping",
		}
	case errors.Is(err, billingdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "invalid_signature",
			Message: "webhook signature verification failed",
		}
	case errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, identity.ErrUnverifiable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "identity provider unavailable",
		}
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, errorPayload{
			Type:    "payload_too_large",
			Message: "request body exceeds the accepted size",
		}
	case errors.Is(err, advisor.ErrProviderUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_unavailable",
			Message: "advisory provider unavailable",
		}
	case errors.Is(err, advisordomain.ErrEmptyQuestion),
		errors.Is(err, billingdomain.ErrInvalidEvent),
		errors.Is(err, quotadomain.ErrInvalidTier),
		errors.Is(err, quotadomain.ErrInvalidCredits),
		errors.Is(err, quotadomain.ErrInvalidBillingRef),
		errors.Is(err, quotadomain.ErrInvalidUser),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
