package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/joseikin-rescue/server/internal/billing/domain"
	"go.uber.org/zap"
)

const (
	checkoutSignatureHeader = "X-Checkout-Signature"
	maxCheckoutPayload      = 1 << 20
)

// HandleCheckoutWebhook applies a payment-completion event to the quota
// ledger. Any ledger failure maps to a non-2xx status so the processor
// redelivers; success and the idempotent no-op cases both return 200.
func (s *Server) HandleCheckoutWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCheckoutPayload+1))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if len(payload) > maxCheckoutPayload {
		// A truncated body would fail signature verification anyway; reject
		// it as what it is rather than as a bad signature.
		AbortWithError(c, ErrPayloadTooLarge)
		return
	}

	if err := s.sigverify.Verify(payload, c.GetHeader(checkoutSignatureHeader)); err != nil {
		s.log.Warn("checkout webhook rejected", zap.Error(err))
		AbortWithError(c, err)
		return
	}

	var event billingdomain.CheckoutEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		AbortWithError(c, billingdomain.ErrInvalidEvent)
		return
	}

	if err := s.billingsvc.TranslateAndApply(c.Request.Context(), event); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "applied"})
}
