package api

import (
	"errors"
	"net/http"

	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves the payment gateway integration endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type InitiatePaymentRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	PlanName string  `json:"planName" binding:"omitempty,max=100"`
}

type VerifyPaymentRequest struct {
	Data string `json:"data" binding:"required"` // base64 callback payload from the gateway
}

// Initiate returns a signed form payload the client posts to the gateway.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req InitiatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Initiate(c.Request.Context(), req.Amount, req.PlanName)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusOK, "payment initiated", payment)
}

// Verify checks a gateway callback signature. An unverified signature is
// a successful verification with verified=false, not a transport error.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.paymentService.Verify(c.Request.Context(), userID, req.Data)
	if err != nil {
		if errors.Is(err, service.ErrMalformedCallback) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortServerError(c, err)
		}
		return
	}

	message := "payment verified"
	if !result.Verified {
		message = "payment signature mismatch"
	}
	respondSuccess(c, http.StatusOK, message, result)
}
