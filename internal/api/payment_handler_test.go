package api

import (
	"context"
	"net/http"
	"testing"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePaymentService struct {
	request     *service.PaymentRequest
	initiateErr error
	result      *service.VerificationResult
	verifyErr   error
}

func (s *fakePaymentService) Initiate(ctx context.Context, amount float64, planName string) (*service.PaymentRequest, error) {
	return s.request, s.initiateErr
}

func (s *fakePaymentService) Verify(ctx context.Context, userID primitive.ObjectID, encodedPayload string) (*service.VerificationResult, error) {
	return s.result, s.verifyErr
}

func newPaymentRouter(svc service.PaymentService) *gin.Engine {
	router := gin.New()
	handler := NewPaymentHandler(svc)
	group := router.Group("/payment", asUser(primitive.NewObjectID(), domain.RoleUser))
	group.POST("/initiate", handler.Initiate)
	group.POST("/verify", handler.Verify)
	return router
}

func TestInitiateReturnsSignedForm(t *testing.T) {
	router := newPaymentRouter(&fakePaymentService{
		request: &service.PaymentRequest{
			TotalAmount:      "1000",
			TransactionUUID:  "tx-1",
			ProductCode:      "EPAYTEST",
			SignedFieldNames: "total_amount,transaction_uuid,product_code",
			Signature:        "c2ln",
			GatewayURL:       "https://gateway.example.com/form",
		},
	})

	rec := postJSON(t, router, "/payment/initiate", gin.H{"amount": 1000, "planName": "Premium"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1000", data["total_amount"])
	assert.Equal(t, "c2ln", data["signature"])
	assert.Equal(t, "https://gateway.example.com/form", data["gateway_url"])
}

func TestInitiateValidatesAmount(t *testing.T) {
	router := newPaymentRouter(&fakePaymentService{})

	rec := postJSON(t, router, "/payment/initiate", gin.H{"amount": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestVerifyMismatchIsNotATransportError(t *testing.T) {
	router := newPaymentRouter(&fakePaymentService{
		result: &service.VerificationResult{Verified: false, Status: "COMPLETE"},
	})

	rec := postJSON(t, router, "/payment/verify", gin.H{"data": "ZmFrZQ=="})

	// Verification ran fine; the verdict is just negative.
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["verified"])
}

func TestVerifyMalformedCallback(t *testing.T) {
	router := newPaymentRouter(&fakePaymentService{verifyErr: service.ErrMalformedCallback})

	rec := postJSON(t, router, "/payment/verify", gin.H{"data": "%%%"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestVerifyRequiresPayload(t *testing.T) {
	router := newPaymentRouter(&fakePaymentService{})

	rec := postJSON(t, router, "/payment/verify", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
